package util

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// CreatePidFile creates the pid file at the specified location
func CreatePidFile(logger *log.Logger, pidFilePath string) error {
	logger.Infof("Creating PID file at: %s", pidFilePath)
	fout, err := os.Create(pidFilePath)
	if err != nil {
		err = fmt.Errorf("%s: could not create pid file, %v", pidFilePath, err)
		logger.Error(err)
		return err
	}
	defer fout.Close()

	if _, err = fmt.Fprintf(fout, "%d", os.Getpid()); err != nil {
		err = fmt.Errorf("%s: could not write pid file, %v", pidFilePath, err)
		logger.Error(err)
		return err
	}
	return nil
}

// RemovePidFile removes the pid file, a missing file is not an error.
func RemovePidFile(logger *log.Logger, pidFilePath string) {
	if err := os.Remove(pidFilePath); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Warnf("%s: could not remove pid file", pidFilePath)
	}
}
