package services

import (
	"testing"

	"earnings-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogOrderAndIDs(t *testing.T) {
	c := DefaultCatalog()
	ids := make([]string, 0, c.Len())
	for _, a := range c.ListActions() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"watch_ads", "complete_surveys", "refer_friends", "daily_bonus", "play_mini_games"}, ids)

	// stable across calls and not aliased
	first := c.ListActions()
	first[0].Name = "mutated"
	assert.Equal(t, "Watch Ads", c.ListActions()[0].Name)

	a, ok := c.Action("daily_bonus")
	require.True(t, ok)
	assert.Equal(t, int64(86400), a.CooldownSeconds)

	at, ok := c.ActionAt(4)
	require.True(t, ok)
	assert.Equal(t, "play_mini_games", at.ID)

	_, ok = c.ActionAt(5)
	assert.False(t, ok)
	_, ok = c.ActionAt(-1)
	assert.False(t, ok)
}

func TestNewCatalogRejectsInvalidActions(t *testing.T) {
	cases := map[string][]models.EarningAction{
		"inverted range":    {{ID: "a", Points: models.PointRange{Min: 10, Max: 5}}},
		"negative cooldown": {{ID: "a", Points: models.PointRange{Min: 1, Max: 2}, CooldownSeconds: -1}},
		"duplicate id":      {{ID: "a", Points: models.PointRange{Min: 1, Max: 1}}, {ID: "a", Points: models.PointRange{Min: 1, Max: 1}}},
		"no id or name":     {{Points: models.PointRange{Min: 1, Max: 1}}},
	}
	for name, actions := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCatalog(actions)
			assert.ErrorIs(t, err, ErrInvalidAction)
		})
	}
}
