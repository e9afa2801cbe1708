package services

import (
	"fmt"
	"strings"

	"earnings-bot/models"

	"github.com/gosimple/slug"
)

// Catalog is the ordered, read-only set of earning actions.
type Catalog struct {
	actions []models.EarningAction
	byID    map[string]int
}

// NewCatalog validates actions and freezes their order. Actions without an ID get one derived
// from their name ("Watch Ads" -> "watch_ads").
func NewCatalog(actions []models.EarningAction) (*Catalog, error) {
	c := &Catalog{
		actions: make([]models.EarningAction, 0, len(actions)),
		byID:    make(map[string]int, len(actions)),
	}
	for i, a := range actions {
		if a.ID == "" {
			a.ID = ActionIDFromName(a.Name)
		}
		if a.ID == "" {
			return nil, fmt.Errorf("%w: action #%d has no id or name", ErrInvalidAction, i)
		}
		if !a.Valid() {
			return nil, fmt.Errorf("%w: %s has range [%d,%d] and cooldown %ds",
				ErrInvalidAction, a.ID, a.Points.Min, a.Points.Max, a.CooldownSeconds)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidAction, a.ID)
		}
		c.byID[a.ID] = len(c.actions)
		c.actions = append(c.actions, a)
	}
	return c, nil
}

// DefaultCatalog is the stock action table.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]models.EarningAction{
		{Name: "Watch Ads", Description: "Watch short video ads and earn points", Points: models.PointRange{Min: 5, Max: 20}, CooldownSeconds: 60},
		{Name: "Complete Surveys", Description: "Answer survey questions and earn rewards", Points: models.PointRange{Min: 50, Max: 200}, CooldownSeconds: 300},
		{Name: "Refer Friends", Description: "Invite friends and get bonus when they join", Points: models.PointRange{Min: 100, Max: 500}, CooldownSeconds: 0},
		{Name: "Daily Bonus", Description: "Claim your daily reward", Points: models.PointRange{Min: 10, Max: 100}, CooldownSeconds: 86400},
		{Name: "Play Mini Games", Description: "Play simple games and earn points", Points: models.PointRange{Min: 20, Max: 100}, CooldownSeconds: 180},
	})
	if err != nil {
		panic(err) // static table
	}
	return c
}

// ActionIDFromName turns a display name into a catalog id.
func ActionIDFromName(name string) string {
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}

// ListActions returns the actions in selection order.
func (c *Catalog) ListActions() []models.EarningAction {
	out := make([]models.EarningAction, len(c.actions))
	copy(out, c.actions)
	return out
}

func (c *Catalog) Action(id string) (models.EarningAction, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.EarningAction{}, false
	}
	return c.actions[i], true
}

// ActionAt resolves a selection index as shown to the user.
func (c *Catalog) ActionAt(index int) (models.EarningAction, bool) {
	if index < 0 || index >= len(c.actions) {
		return models.EarningAction{}, false
	}
	return c.actions[index], true
}

func (c *Catalog) Len() int { return len(c.actions) }
