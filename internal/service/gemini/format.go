package gemini

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"FinSignal/internal/domain/models"
)

const (
	trillion     = 1_000_000_000_000
	hundredMilli = 100_000_000

	noData = "데이터 없음"
)

const promptTemplate = `당신은 전문적인 주식 분석가입니다. 다음 주식에 대한 질문에 답해주세요:

주식 정보:
%s
사용자 질문: %s

답변 시 다음 지침을 따라주세요:
1. 제공된 재무 데이터를 기반으로 분석하세요
2. 구체적이고 전문적인 분석을 제공하되 이해하기 쉽게 설명하세요
3. 투자 추천이나 매수/매도 권유는 하지 마세요
4. 불확실한 정보는 명확히 표시하고, 추가 조사가 필요함을 알려주세요
5. 한국어로 답변하세요
6. 답변은 300자 이내로 간결하게 작성하세요

답변:`

// Prompt builds the model prompt for a question about s.
func Prompt(question string, s *models.Snapshot) string {
	return fmt.Sprintf(promptTemplate, StockInfo(s), strings.TrimSpace(question))
}

// StockInfo renders the snapshot as the fact sheet given to the model.
func StockInfo(s *models.Snapshot) string {
	m := s.Metrics
	cur := s.Market.Currency

	var b strings.Builder
	fmt.Fprintf(&b, "기업명: %s\n", s.Security.DisplayName)
	fmt.Fprintf(&b, "종목코드: %s\n", s.Security.Ticker)
	fmt.Fprintf(&b, "시장: %s\n", s.Security.Venue)
	fmt.Fprintf(&b, "현재가: %s\n\n", Money(s.Market.Price, cur))
	b.WriteString("재무정보:\n")
	fmt.Fprintf(&b, "- 시가총액: %s\n", Money(m.MarketCapitalization, cur))
	fmt.Fprintf(&b, "- PER: %s\n", withUnit(m.PER, 1, "배"))
	fmt.Fprintf(&b, "- 부채비율: %s\n", withUnit(m.DebtRatioPercent, 1, "%"))
	fmt.Fprintf(&b, "- 당좌비율: %s\n", withUnit(m.QuickRatioPercent, 1, "%"))
	fmt.Fprintf(&b, "- 시가배당률: %s\n", withUnit(m.DividendYieldPercent, 2, "%"))
	fmt.Fprintf(&b, "- 당기순이익 성장률: %s\n", Growth(m.NetIncomeGrowthPercent))
	return b.String()
}

// Growth renders a growth rate, naming the two sign-flip cases.
func Growth(g *models.Growth) string {
	if g == nil {
		return noData
	}
	switch g.Kind {
	case models.GrowthTurnedProfitable:
		return "흑자전환"
	case models.GrowthRemainedUnprofitable:
		return "적자 지속"
	}
	if g.Percent == nil {
		return noData
	}
	return strconv.FormatFloat(*g.Percent, 'f', 1, 64) + "%"
}

// Money renders an amount. KRW amounts use 조/억 units.
func Money(v *float64, currency string) string {
	if v == nil || math.IsNaN(*v) {
		return noData
	}
	if currency != "" && currency != "KRW" {
		return groupDigits(*v) + " " + currency
	}
	return Won(*v)
}

// Won renders an amount in won, truncated to whole 조 or 억 when large enough.
func Won(v float64) string {
	switch {
	case v >= trillion:
		return strconv.FormatInt(int64(math.Floor(v/trillion)), 10) + "조원"
	case v >= hundredMilli:
		return strconv.FormatInt(int64(math.Floor(v/hundredMilli)), 10) + "억원"
	}
	return groupDigits(v) + "원"
}

func withUnit(v *float64, prec int, unit string) string {
	if v == nil {
		return noData
	}
	return strconv.FormatFloat(*v, 'f', prec, 64) + unit
}

func groupDigits(v float64) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// Fallback answers market cap and PER questions from the snapshot directly and
// apologizes for anything else.
func Fallback(question string, s *models.Snapshot) string {
	q := strings.ToLower(question)
	name := s.Security.DisplayName
	m := s.Metrics

	if strings.Contains(q, "시가총액") && m.MarketCapitalization != nil && *m.MarketCapitalization > 0 {
		mc := *m.MarketCapitalization
		display := strconv.FormatInt(int64(math.Floor(mc/hundredMilli)), 10) + "억원"
		if mc >= trillion {
			display = strconv.FormatInt(int64(math.Floor(mc/trillion)), 10) + "조원"
		}
		return fmt.Sprintf("%s의 시가총액은 약 %s입니다.", name, display)
	}
	if strings.Contains(q, "per") && m.PER != nil {
		return fmt.Sprintf("%s의 PER은 %s배입니다.", name, strconv.FormatFloat(*m.PER, 'f', 1, 64))
	}
	return fmt.Sprintf("%s에 대한 질문을 받았지만, 현재 상세한 분석을 제공할 수 없습니다. 다시 시도해주세요.", name)
}
