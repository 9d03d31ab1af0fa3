package controllers_test

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/vnkhanh/form-server/utils"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return ts
}

func settingsJSON(s utils.PresentationSettings) datatypes.JSONType[utils.PresentationSettings] {
	return datatypes.NewJSONType(s)
}
