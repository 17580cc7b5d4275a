package auth

import (
	"fmt"

	"github.com/rs/zerolog"
)

// ZerologAdapter exposes a zerolog logger through the Logger interface
// the auth package consumes.
type ZerologAdapter struct {
	log zerolog.Logger
}

var _ Logger = (*ZerologAdapter)(nil)

// NewZerologAdapter wraps a zerolog logger.
func NewZerologAdapter(log zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{log: log}
}

func (z *ZerologAdapter) Debug(format string, args ...any) {
	z.emit(z.log.Debug(), format, args)
}

func (z *ZerologAdapter) Info(format string, args ...any) {
	z.emit(z.log.Info(), format, args)
}

func (z *ZerologAdapter) Warn(format string, args ...any) {
	z.emit(z.log.Warn(), format, args)
}

func (z *ZerologAdapter) Error(format string, args ...any) {
	z.emit(z.log.Error(), format, args)
}

// emit handles both calling conventions the Logger interface sees:
// printf-style when the format has verbs, otherwise message plus
// alternating key/value pairs.
func (z *ZerologAdapter) emit(ev *zerolog.Event, format string, args []any) {
	if len(args) == 0 {
		ev.Msg(format)
		return
	}

	if len(args)%2 == 0 {
		for i := 0; i+1 < len(args); i += 2 {
			key, ok := args[i].(string)
			if !ok {
				ev.Msgf(format, args...)
				return
			}
			ev = ev.Interface(key, args[i+1])
		}
		ev.Msg(format)
		return
	}

	ev.Msg(fmt.Sprintf(format, args...))
}
