package domain

import (
	"testing"
	"time"

	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func activeAvatar(tags ...string) avatardomain.Avatar {
	return avatardomain.Avatar{
		Name:         "phoenix",
		Status:       avatardomain.AvatarStatusActive,
		VariantCount: 1,
		Tags:         datatypes.JSONSlice[string](tags),
	}
}

func TestSurfacesAllMode(t *testing.T) {
	activity := Activity{SelectionMode: SelectionAll}

	assert.True(t, activity.Surfaces(activeAvatar()))

	inactive := activeAvatar()
	inactive.Status = avatardomain.AvatarStatusInactive
	assert.False(t, activity.Surfaces(inactive))

	archived := activeAvatar()
	archived.Archived = true
	assert.False(t, activity.Surfaces(archived))
}

func TestSurfacesSpecificModeMatchesOnAnyTag(t *testing.T) {
	activity := Activity{
		SelectionMode: SelectionSpecific,
		Tags:          datatypes.JSONSlice[string]{"fire", "legendary"},
	}

	assert.True(t, activity.Surfaces(activeAvatar("legendary")))
	assert.False(t, activity.Surfaces(activeAvatar("water")))
	assert.False(t, activity.Surfaces(activeAvatar()))
}

func TestSurfacesSpecificModeWithoutTags(t *testing.T) {
	activity := Activity{SelectionMode: SelectionSpecific}

	// An empty tag list surfaces nothing rather than everything.
	assert.False(t, activity.Surfaces(activeAvatar("fire")))
}

func TestIntervalDefaultsToOneDay(t *testing.T) {
	assert.Equal(t, 24*time.Hour, Activity{}.Interval())
	assert.Equal(t, time.Hour, Activity{IntervalSeconds: 3600}.Interval())
}
