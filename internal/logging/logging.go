package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// LogFilePath returns the path of the log file for one CLI session.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}
