package logging

import (
	logger "github.com/sirupsen/logrus"
)

// Console presents run stages as log lines, for use outside of GitHub Actions
type Console struct {
	log   logger.FieldLogger
	stage string
}

func NewConsole(log logger.FieldLogger) *Console {
	if log == nil {
		log = logger.StandardLogger()
	}
	return &Console{log: log}
}

func (c *Console) Group(title string) {
	c.stage = title
	c.log.Info(title)
}

func (c *Console) EndGroup() {
	c.stage = ""
}

func (c *Console) Debugf(msg string, args ...any) {
	entry := c.log
	if c.stage != "" {
		entry = c.log.WithField("stage", c.stage)
	}
	entry.Debugf(msg, args...)
}
