// Package logging routes the standard logger through a rotating file so the
// whole tree can keep using log.Printf.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init points the standard logger at a rotating file in addition to stderr
// and returns a close func for shutdown.
func Init(path string) func() error {
	if path == "" {
		return func() error { return nil }
	}
	rotating := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotating))
	log.SetFlags(log.LstdFlags)
	return rotating.Close
}
