package logging

import (
	log "github.com/sirupsen/logrus"
)

// New builds the process-wide logger entry. Called once at process
// start; components receive the entry (or a child with extra fields)
// through their constructors.
func New(service, level string) *log.Entry {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}

	return logger.WithField("service", service)
}
