package aveplay

import (
	"reflect"
	"sync"
)

// one-time backend initialization, shared by every player in the process
var (
	libraryMutex sync.Mutex
	libraryInits = make(map[reflect.Type]*libraryInit)
)

type libraryInit struct {
	once sync.Once
	err  error
}

func initBackend(backend Backend) error {
	initializer, ok := backend.(Initializer)
	if !ok {
		return nil
	}

	key := reflect.TypeOf(backend)
	libraryMutex.Lock()
	entry, found := libraryInits[key]
	if !found {
		entry = &libraryInit{}
		libraryInits[key] = entry
	}
	libraryMutex.Unlock()

	entry.once.Do(func() {
		entry.err = initializer.Init()
		if entry.err != nil {
			pkgLogger.Error().Err(entry.err).Str("backend", key.String()).Msg("backend initialization failed")
		} else {
			pkgLogger.Debug().Str("backend", key.String()).Msg("backend initialized")
		}
	})
	return entry.err
}
