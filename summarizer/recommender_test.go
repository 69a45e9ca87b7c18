package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseQuestions(t *testing.T) {
	long := strings.Repeat("가", MaxQuestionChars+1)
	exact := strings.Repeat("나", MaxQuestionChars)

	tests := []struct {
		name string
		raw  string
		k    int
		want []string
	}{
		{
			name: "plain lines",
			raw:  "데이터 수집 방법\n모델 평가 지표\n협업 과정",
			k:    5,
			want: []string{"데이터 수집 방법", "모델 평가 지표", "협업 과정"},
		},
		{
			name: "bullets and dashes stripped",
			raw:  "- 데이터 수집 방법\n• 모델 평가 지표 -\n  -- 협업 과정 ",
			k:    5,
			want: []string{"데이터 수집 방법", "모델 평가 지표", "협업 과정"},
		},
		{
			name: "blank lines and separators dropped",
			raw:  "\n---\n데이터 수집 방법\n   \n•\n",
			k:    5,
			want: []string{"데이터 수집 방법"},
		},
		{
			name: "overlong dropped, exact length kept",
			raw:  long + "\n" + exact,
			k:    5,
			want: []string{exact},
		},
		{
			name: "duplicates keep first occurrence",
			raw:  "협업 과정\n- 협업 과정\n모델 평가",
			k:    5,
			want: []string{"협업 과정", "모델 평가"},
		},
		{
			name: "stops at k",
			raw:  "a\nb\nc\nd",
			k:    2,
			want: []string{"a", "b"},
		},
		{
			name: "numbering is not stripped",
			raw:  "1. 데이터",
			k:    5,
			want: []string{"1. 데이터"},
		},
		{
			name: "zero k",
			raw:  "a\nb",
			k:    0,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuestions(tt.raw, tt.k)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseQuestions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFillWithBackups(t *testing.T) {
	backups := []string{"백업 하나", "백업 둘", "", strings.Repeat("긴", 31), "백업 셋"}

	tests := []struct {
		name      string
		questions []string
		k         int
		want      []string
	}{
		{
			name:      "already full",
			questions: []string{"a", "b"},
			k:         2,
			want:      []string{"a", "b"},
		},
		{
			name:      "pads in order",
			questions: []string{"a"},
			k:         3,
			want:      []string{"a", "백업 하나", "백업 둘"},
		},
		{
			name:      "skips present, empty and overlong backups",
			questions: []string{"백업 하나"},
			k:         3,
			want:      []string{"백업 하나", "백업 둘", "백업 셋"},
		},
		{
			name:      "backups exhausted",
			questions: nil,
			k:         10,
			want:      []string{"백업 하나", "백업 둘", "백업 셋"},
		},
		{
			name:      "truncates oversized input",
			questions: []string{"a", "b", "c"},
			k:         2,
			want:      []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FillWithBackups(tt.questions, tt.k, backups)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FillWithBackups mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFillWithBackupsDoesNotAlias(t *testing.T) {
	in := make([]string, 1, 10)
	in[0] = "a"
	out := FillWithBackups(in, 3, []string{"b", "c"})
	out[0] = "changed"
	if in[0] != "a" {
		t.Error("FillWithBackups modified its input")
	}
}

func TestRecommend(t *testing.T) {
	gen := &scriptedGenerator{output: "- 데이터 전처리 과정\n- 데이터 전처리 과정\n\n" +
		strings.Repeat("너무 긴 질문 ", 10) + "\n• 성과 지표의 신뢰도"}
	rec := &fakeRecorder{}
	r := NewRecommender(gen, nil, DefaultQuestionTemperature, rec, nil)

	got, err := r.Recommend(context.Background(), sampleReport, 0, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"데이터 전처리 과정",
		"성과 지표의 신뢰도",
		"데이터 전처리의 타당성 중심",
		"모델 선택과 하이퍼파라미터 근거",
		"예측 결과의 신뢰도와 한계",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Recommend mismatch (-want +got):\n%s", diff)
	}

	req := gen.requests[0]
	if req.Temperature != DefaultQuestionTemperature {
		t.Errorf("expected temperature %v, got %v", DefaultQuestionTemperature, req.Temperature)
	}
	if req.Model != "gpt-4o-mini" {
		t.Errorf("model not forwarded: %q", req.Model)
	}
	if !strings.Contains(req.Prompt, "5개 제안하라") {
		t.Error("default count missing from prompt")
	}
	if rec.fromModel != 2 || rec.fromBackup != 3 {
		t.Errorf("expected 2 model + 3 backup, got %d + %d", rec.fromModel, rec.fromBackup)
	}
}

func TestRecommendInvariants(t *testing.T) {
	gen := &scriptedGenerator{output: strings.Repeat("같은 질문\n", 20)}
	r := NewRecommender(gen, []string{"같은 질문", "다른 질문"}, 0.3, nil, nil)

	got, err := r.Recommend(context.Background(), sampleReport, 4, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"같은 질문", "다른 질문"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	seen := map[string]bool{}
	for _, q := range got {
		if CountChars(q) > MaxQuestionChars {
			t.Errorf("question too long: %q", q)
		}
		if seen[q] {
			t.Errorf("duplicate question: %q", q)
		}
		seen[q] = true
	}
}

func TestRecommendEmptyBackups(t *testing.T) {
	gen := &scriptedGenerator{output: "하나뿐인 질문"}
	r := NewRecommender(gen, []string{}, 0.3, nil, nil)

	got, err := r.Recommend(context.Background(), sampleReport, 5, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"하나뿐인 질문"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommendErrors(t *testing.T) {
	t.Run("empty report", func(t *testing.T) {
		gen := &scriptedGenerator{output: "x"}
		r := NewRecommender(gen, nil, 0.3, nil, nil)
		if _, err := r.Recommend(context.Background(), "  ", 5, "m"); !errors.Is(err, ErrEmptyReport) {
			t.Errorf("expected ErrEmptyReport, got %v", err)
		}
		if gen.calls() != 0 {
			t.Error("blank report must not reach the model")
		}
	})

	t.Run("model failure", func(t *testing.T) {
		cause := errors.New("quota exceeded")
		rec := &fakeRecorder{}
		r := NewRecommender(&scriptedGenerator{err: cause}, nil, 0.3, rec, nil)
		got, err := r.Recommend(context.Background(), sampleReport, 5, "m")
		if !errors.Is(err, cause) {
			t.Fatalf("expected wrapped cause, got %v", err)
		}
		if got != nil {
			t.Errorf("expected nil questions on failure, got %v", got)
		}
		if len(rec.errors) != 1 || rec.errors[0] != "questions" {
			t.Errorf("expected questions error recorded, got %v", rec.errors)
		}
	})
}
