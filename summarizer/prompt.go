package summarizer

import (
	"fmt"
	"strings"
)

// BuildSummaryPrompt renders the instruction for one fixed-length summary.
// A non-empty perspective narrows the summary to content relevant to it.
func BuildSummaryPrompt(report string, limit int, perspective string) string {
	var sb strings.Builder
	sb.WriteString("다음은 고등학생의 프로젝트 활동 보고서다. 지시에 따라 요약하라.\n\n")
	sb.WriteString("규칙:\n")
	sb.WriteString("1) 한국어 한 단락\n")
	sb.WriteString("2) 새로운 사실 추가 금지, 원문 핵심만\n")
	sb.WriteString("3) 목적→주요 수행→성과/지표→배운 점/다음 단계 흐름 선호\n")
	sb.WriteString("4) 수치/지표 존재 시 명시\n")
	fmt.Fprintf(&sb, "5) 공백 포함 %d자 이내 목표\n", limit)
	if p := strings.TrimSpace(perspective); p != "" {
		fmt.Fprintf(&sb, "\n교사 질문 관점 지시: '%s' 관점에서 관련성 높은 내용만 선별해 요약.\n", p)
	}
	sb.WriteString("\n[보고서 본문]\n")
	sb.WriteString(report)
	sb.WriteString("\n\n출력은 불릿/번호 없이 한 단락으로만.")
	return sb.String()
}

// BuildQuestionPrompt renders the instruction asking for k review angles.
func BuildQuestionPrompt(report string, k int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "다음 학생 프로젝트 보고서를 읽고, 교사가 관점 요약에 활용할 수 있는 질문을 한국어로 %d개 제안하라.\n", k)
	fmt.Fprintf(&sb, "- 각 질문은 한 줄, %d자 이내, 모호한 표현 지양, 구체적 관점 제시\n", MaxQuestionChars)
	sb.WriteString("- 예: '데이터 전처리의 타당성 중심', '협업 과정의 역할 분담과 갈등 해결', '성과 지표의 신뢰도와 한계'\n")
	sb.WriteString("\n[보고서]\n")
	sb.WriteString(report)
	fmt.Fprintf(&sb, "\n\n출력은 번호 없이 줄바꿈으로만 구분된 %d개 질문.", k)
	return sb.String()
}
