package domain

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTotalBoundaries(t *testing.T) {
	tests := []struct {
		total int
		tier  Tier
	}{
		{0, Tier1},
		{3, Tier1},
		{6, Tier1},
		{7, Tier2},
		{12, Tier2},
		{13, Tier3},
		{18, Tier3},
		{19, Tier4},
		{20, Tier4},
		{24, Tier4},
		{25, Tier5},
		{30, Tier5},
		{31, Tier6},
		{1000, Tier6},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total_%d", tt.total), func(t *testing.T) {
			assert.Equal(t, tt.tier, ClassifyTotal(tt.total))
		})
	}
}

func TestClassifyTotalAlwaysInRangeAndMonotonic(t *testing.T) {
	prev := Tier1
	for total := 0; total <= 100; total++ {
		tier := ClassifyTotal(total)
		require.True(t, tier.Valid(), "total %d gave tier %d", total, tier)
		require.GreaterOrEqual(t, tier, prev, "tier dropped at total %d", total)
		require.LessOrEqual(t, tier-prev, Tier(1), "tier skipped at total %d", total)
		prev = tier
	}
	assert.Equal(t, Tier6, prev)
}

func TestEveryBankTotalClassifies(t *testing.T) {
	bank := DefaultQuestionBank()
	require.Equal(t, 24, bank.MaxScore())

	for total := 0; total <= bank.MaxScore(); total++ {
		c, err := LookupClassification(ClassifyTotal(total))
		require.NoError(t, err)
		assert.Equal(t, ClassifyTotal(total), c.Tier)
	}
}

func TestComputeClassificationEmptyAnswers(t *testing.T) {
	c := ComputeClassification(AnswerSet{})
	assert.Equal(t, Tier1, c.Tier)

	c = ComputeClassification(nil)
	assert.Equal(t, Tier1, c.Tier)
}

func TestComputeClassificationLowestOptions(t *testing.T) {
	answers := AnswerSet{}
	for _, q := range DefaultQuestionBank().Questions {
		answers[q.ID] = q.Options[0].Score
	}
	// Three of six questions nudged up by one keeps the total at 3.
	answers["eye_color"] = 1
	answers["hair_color"] = 1
	answers["tanning"] = 1

	c := ComputeClassification(answers)
	assert.Equal(t, 3, answers.Total())
	assert.Equal(t, Tier1, c.Tier)
	assert.True(t, c.IsSuitable)
	assert.Equal(t, EligibilityExcellent, c.Eligibility)
}

func TestComputeClassificationIsOrderIndependent(t *testing.T) {
	bank := DefaultQuestionBank()
	pairs := make([][2]int, len(bank.Questions))
	for i := range bank.Questions {
		pairs[i] = [2]int{i, (i * 3) % 5}
	}

	var want Classification
	var wantTotal int
	rnd := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		rnd.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })
		answers := AnswerSet{}
		for _, p := range pairs {
			answers[bank.Questions[p[0]].ID] = p[1]
		}
		got := ComputeClassification(answers)
		if round == 0 {
			want, wantTotal = got, answers.Total()
			continue
		}
		assert.Equal(t, wantTotal, answers.Total())
		assert.Equal(t, want, got)
	}
}

func TestTierBandCoversClassifyTotal(t *testing.T) {
	for tier := Tier1; tier <= Tier6; tier++ {
		lo, hi, err := TierBand(tier)
		require.NoError(t, err)
		assert.Equal(t, tier, ClassifyTotal(lo), "lo of tier %d", tier)
		if hi >= 0 {
			assert.Equal(t, tier, ClassifyTotal(hi), "hi of tier %d", tier)
			assert.Equal(t, tier+1, ClassifyTotal(hi+1), "above tier %d", tier)
		}
	}
	_, _, err := TierBand(Tier(7))
	assert.ErrorIs(t, err, ErrTierOutOfRange)
}
