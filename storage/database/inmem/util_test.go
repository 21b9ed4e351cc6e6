package inmemdb

import (
	"strconv"

	"github.com/masdens1250/appamine/core/settings"
)

var settingsFixture = settings.Settings{SchoolName: "S", CounselorName: "C"}

func itoa(n int) string { return strconv.Itoa(n) }
