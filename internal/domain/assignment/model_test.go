package assignment

import (
	"testing"
	"time"

	"github.com/intunedeck/intunedeck/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentWireShape(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	a := &Assignment{
		ID:              "asgn_01",
		ApplicationID:   "app-1",
		ApplicationName: "Company Portal",
		GroupID:         "grp-1",
		GroupName:       "Sales",
		TargetType:      types.TargetTypeGroup,
		Intent:          types.IntentRequired,
		Settings:        &AssignmentSettings{NotificationsEnabled: true},
		CreatedDate:     created,
		Status:          types.AssignmentStatusSuccess,
	}

	raw, err := jsoniter.Marshal(a)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, jsoniter.Unmarshal(raw, &fields))
	for _, key := range []string{
		"id", "applicationId", "applicationName", "groupId", "groupName",
		"targetType", "intent", "settings", "createdDate", "status",
	} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "errorDetail")

	var back Assignment
	require.NoError(t, jsoniter.Unmarshal(raw, &back))
	assert.Equal(t, *a.Settings, *back.Settings)
	back.Settings = a.Settings
	assert.Equal(t, *a, back)
}

func TestPairKeyBuiltInTargets(t *testing.T) {
	group := &Assignment{ApplicationID: "app-1", GroupID: "grp-1", TargetType: types.TargetTypeGroup}
	assert.Equal(t, "app-1|grp-1", group.PairKey())

	first := &Assignment{ApplicationID: "app-1", GroupID: "builtin-a", TargetType: types.TargetTypeAllDevices}
	second := &Assignment{ApplicationID: "app-1", GroupID: "builtin-b", TargetType: types.TargetTypeAllDevices}
	assert.Equal(t, first.PairKey(), second.PairKey())
}

func TestAssignmentCloneIsDeep(t *testing.T) {
	a := &Assignment{
		ID:       "asgn_02",
		Settings: &AssignmentSettings{DeliveryOptimization: "foreground"},
	}
	clone := a.Clone()
	clone.Settings.DeliveryOptimization = "background"
	assert.Equal(t, "foreground", a.Settings.DeliveryOptimization)
}
