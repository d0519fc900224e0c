package engine

import (
	"fmt"
	"strings"
	"time"
)

const systemPrompt = "당신은 코인 에어드랍 전문가입니다. 정확하고 신뢰할 수 있는 정보만 제공하세요. 근거가 불확실한 내용은 언급하지 마세요."

// buildPrompt renders the protocol facts into the generation prompt.
// The model is asked for a JSON object matching Generated's shape.
func buildPrompt(req GenerateRequest) string {
	chainNames := make([]string, len(req.Chains))
	for i, c := range req.Chains {
		chainNames[i] = string(c)
	}

	tvl := "정보 없음"
	if req.TVLUSD > 0 {
		tvl = fmt.Sprintf("$%.0f", req.TVLUSD)
	}
	website := req.Website
	if website == "" {
		website = "정보 없음"
	}

	return fmt.Sprintf(`당신은 코인 에어드랍 전문가입니다. 다음 프로토콜의 에어드랍 가이드를 한국어로 작성해주세요.

프로토콜 정보:
- 이름: %s
- 체인: %s
- TVL: %s
- 웹사이트: %s
- 출처: %s

요구사항:
1. 직답(Summary): 50-110자로 에어드랍 핵심 요약
2. HowTo: 3-5단계로 참여 방법 설명
3. FAQ: 최소 3개 질문-답변 (Claim-Evidence 포함, 수치/날짜 명시)
4. Tips: 유용한 팁 2-3개
5. 바이럴 요소: 트위터/소셜미디어 공유용 한 줄 요약

JSON 형식으로 응답:
{
  "summary": "직답 50-110자",
  "howto": [
    {"title": "단계 제목", "description": "상세 설명"}
  ],
  "faq": [
    {"question": "질문", "answer": "수치와 날짜 포함한 답변"}
  ],
  "tips": ["팁 1", "팁 2"],
  "viral": "바이럴 요약",
  "hashtags": ["#에어드랍", "#체인명"]
}`,
		req.ProjectName, strings.Join(chainNames, ", "), tvl, website, req.SourceRef)
}

// GuideTitle is the fixed title pattern for generated guides.
func GuideTitle(projectName string, now time.Time) string {
	return fmt.Sprintf("%s 에어드랍 참여 가이드 %d", projectName, now.Year())
}
