package logger

import "sync"

var named sync.Map // string -> *Logger

// Register stores a named logger. Packages fetch it with Get.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered under name, or the global logger tagged
// with name as its component. The fallback tracks the current global logger.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}

// Unregister removes a named logger.
func Unregister(name string) {
	named.Delete(name)
}
