/*
 * Copyright 2026 quarrydb.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the concrete logger type handed out by this package.
type Logger = logrus.Logger

var (
	registryMu sync.RWMutex
	registry   = map[string]*logrus.Logger{}
)

// namedFormatter renders "2006-01-02 15:04:05.000 LEVEL [NAME] message".
type namedFormatter struct {
	name string
}

func (f *namedFormatter) Format(e *logrus.Entry) ([]byte, error) {
	level := strings.ToUpper(e.Level.String())
	line := fmt.Sprintf("%s %-5s [%s] %s",
		e.Time.Format("2006-01-02 15:04:05.000"), level, f.name, e.Message)

	if len(e.Data) > 0 {
		var b strings.Builder
		b.WriteString(line)
		for k, v := range e.Data {
			b.WriteString(fmt.Sprintf(" %s=%v", k, v))
		}
		line = b.String()
	}
	return []byte(line + "\n"), nil
}

// NewLogger returns the named logger, creating it on first use. The initial
// level comes from QUARRY_LOG_LEVEL (default "info").
func NewLogger(name string) *logrus.Logger {
	registryMu.RLock()
	logger, ok := registry[name]
	registryMu.RUnlock()
	if ok {
		return logger
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if logger, ok = registry[name]; ok {
		return logger
	}

	logger = logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&namedFormatter{name: name})
	logger.SetLevel(parseLevel(EnvDefaultString("QUARRY_LOG_LEVEL", "info")))
	registry[name] = logger
	return logger
}

// SetLoggerLevel changes the level of the named logger if it exists.
func SetLoggerLevel(name string, level string) {
	registryMu.RLock()
	logger, ok := registry[name]
	registryMu.RUnlock()
	if ok {
		logger.SetLevel(parseLevel(level))
	}
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// EnvDefaultString returns the env value for key, or def when unset/empty.
func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvDefaultBool returns the env value for key parsed as a bool, or def when
// unset or unparsable.
func EnvDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}
