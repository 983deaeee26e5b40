package logger

import (
	"go.uber.org/zap"
)

// Log is safe to use before Init; it discards everything until then.
var Log = zap.NewNop().Sugar()

// Init sets up the global sugared logger. Debug selects the human-readable
// development config instead of production JSON.
func Init(debug bool) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = l.Sugar()
}
