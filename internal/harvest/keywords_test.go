package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyTypePrecedence(t *testing.T) {
	t.Parallel()

	require.Equal(t, TypeTenders, ClassifyType("Оголошено тендер на закупівлю обладнання"))
	require.Equal(t, TypeLoans, ClassifyType("Пільговий кредит для малого бізнесу"))
	require.Equal(t, TypePrivateFunding, ClassifyType("Venture investment program for startups"))
	require.Equal(t, TypeGrants, ClassifyType("Грант для громадських організацій"))
	require.Equal(t, TypeGrants, ClassifyType("Call for proposals: culture"))
}

func TestMatchesFundingKeyword(t *testing.T) {
	t.Parallel()

	require.True(t, MatchesFundingKeyword("Грантовий конкурс 2026"))
	require.True(t, MatchesFundingKeyword("New tender announced"))
	require.False(t, MatchesFundingKeyword("Звичайна новина про погоду"))
}

func TestKeywordTagsDeduplicates(t *testing.T) {
	t.Parallel()

	tags := KeywordTags("грант grant funding конкурс")
	require.Equal(t, []string{"grants"}, tags)
}
