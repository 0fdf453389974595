package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/newsharvest/internal/models"
)

func TestMissingFieldsFollowsRequiredOrder(t *testing.T) {
	t.Parallel()

	raw := models.RawRecord{Provider: "x", Title: " "}
	assert.Equal(t, []string{"title", "description", "url", "publishtime"}, raw.MissingFields())

	complete := models.RawRecord{
		Title:       "t",
		Description: "d",
		URL:         "u",
		PublishTime: "p",
		Provider:    "x",
	}
	assert.Empty(t, complete.MissingFields())
}

func TestNormalizeTrimsEveryField(t *testing.T) {
	t.Parallel()

	raw := models.RawRecord{
		Title:       " t ",
		Description: "\td\n",
		URL:         " u",
		PublishTime: "p ",
		Provider:    " x ",
	}

	record := raw.Normalize()
	assert.Equal(t, models.NewsRecord{
		Title:       "t",
		Description: "d",
		URL:         "u",
		PublishTime: "p",
		Provider:    "x",
	}, record)
}
