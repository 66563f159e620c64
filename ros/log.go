package ros

import (
	modular "github.com/edwinhayes/logrus-modular"
	"github.com/sirupsen/logrus"
)

//rosLogRoot is the logrus instance every module logger created by this
//package hangs off. Keeping it package level lets SetLogLevel change the
//verbosity of a node that is already running.
var rosLogRoot = newLogRoot()

func newLogRoot() *logrus.Logger {
	root := logrus.New()
	root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	root.SetLevel(logrus.InfoLevel)
	return root
}

//NewDefaultLogger returns the module logger a freshly created node logs through.
func NewDefaultLogger() modular.ModuleLogger {
	return modular.NewRootLogger(rosLogRoot)
}

//SetLogLevel adjusts the verbosity of every logger created by NewDefaultLogger.
func SetLogLevel(level logrus.Level) {
	rosLogRoot.SetLevel(level)
}
