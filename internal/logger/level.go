package logger

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// LevelCritical sits above slog.LevelError
const LevelCritical = slog.Level(12)

var (
	levelNames = map[slog.Level]string{
		slog.LevelDebug: "DEBUG",
		slog.LevelInfo:  "INFO",
		slog.LevelWarn:  "WARNING",
		slog.LevelError: "ERROR",
		LevelCritical:   "CRITICAL",
	}
	levelNamesTerm = map[slog.Level]string{
		slog.LevelWarn: "\u001B[33m" + "WRN" + "\u001B[0m",
		LevelCritical:  "\u001B[35m" + "CRT" + "\u001B[0m",
	}
)

// LevelSet is the set of levels that are recorded. Anything outside the set
// is dropped, regardless of severity ordering.
type LevelSet map[slog.Level]bool

// AllLevels enables every level
func AllLevels() LevelSet {
	set := make(LevelSet, len(levelNames))
	for lvl := range levelNames {
		set[lvl] = true
	}
	return set
}

// ParseLevel maps a level name to its slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "err", "error":
		return slog.LevelError, nil
	case "crit", "critical", "fatal":
		return LevelCritical, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

// ParseLevels builds a LevelSet from names. An empty list enables all levels.
func ParseLevels(names []string) (LevelSet, error) {
	if len(names) == 0 {
		return AllLevels(), nil
	}
	set := make(LevelSet, len(names))
	for _, name := range names {
		lvl, err := ParseLevel(name)
		if err != nil {
			return nil, err
		}
		set[lvl] = true
	}
	return set, nil
}

// Enabled reports whether lvl is in the set
func (s LevelSet) Enabled(lvl slog.Level) bool {
	return s[lvl]
}

// String lists the enabled level names in severity order
func (s LevelSet) String() string {
	lvls := make([]slog.Level, 0, len(s))
	for lvl, on := range s {
		if on {
			lvls = append(lvls, lvl)
		}
	}
	sort.Slice(lvls, func(i, j int) bool { return lvls[i] < lvls[j] })
	names := make([]string, 0, len(lvls))
	for _, lvl := range lvls {
		names = append(names, levelName(lvl))
	}
	return strings.Join(names, ",")
}

func levelName(lvl slog.Level) string {
	if s, ok := levelNames[lvl]; ok {
		return s
	}
	return lvl.String()
}
