package desktop

import "os"

// wailsLogger routes Wails' internal logging into the shell logger.
type wailsLogger struct {
	l Logger
}

func (w wailsLogger) Print(message string)   { w.l.Info(message, "component", "wails") }
func (w wailsLogger) Trace(message string)   { w.l.Debug(message, "component", "wails") }
func (w wailsLogger) Debug(message string)   { w.l.Debug(message, "component", "wails") }
func (w wailsLogger) Info(message string)    { w.l.Info(message, "component", "wails") }
func (w wailsLogger) Warning(message string) { w.l.Warn(message, "component", "wails") }
func (w wailsLogger) Error(message string)   { w.l.Error(message, "component", "wails") }

func (w wailsLogger) Fatal(message string) {
	w.l.Error(message, "component", "wails", "fatal", true)
	os.Exit(1)
}
