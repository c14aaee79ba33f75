// Package lockfile guards the local state directory against concurrent bot
// instances. Telegram delivers webhook updates to a single consumer and the
// SQLite session store must have one writer, so a second instance pointed at
// the same state directory is always a misconfiguration.
//
// The lock is an flock on a file inside the state directory, released
// automatically by the kernel if the process dies.
package lockfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// LockFileName is the name of the lock file created in the state directory.
const LockFileName = "stroyhub-bot.lock"

// Lock represents an acquired state-directory lock.
type Lock struct {
	file     *os.File
	path     string
	acquired bool
}

// AcquireLock takes an exclusive lock on the state directory, creating it if
// needed. When another instance holds the lock, the returned *LockError names
// the owning process.
func AcquireLock(stateDir string) (*Lock, error) {
	lockPath := filepath.Join(stateDir, LockFileName)
	slog.Debug("Lockfile acquiring lock", "lock_path", lockPath)

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", stateDir, err)
	}

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", lockPath, err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		holder := describeHolder(lockPath)
		slog.Error("Lockfile held by another bot instance", "lock_path", lockPath, "holder", holder)
		return nil, &LockError{LockPath: lockPath, Holder: holder, Cause: err}
	}

	if _, err := file.WriteString(fmt.Sprintf("pid=%d\n", os.Getpid())); err != nil {
		syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		file.Close()
		return nil, fmt.Errorf("failed to write lock information to %s: %w", lockPath, err)
	}
	if err := file.Sync(); err != nil {
		slog.Warn("Lockfile sync failed", "error", err, "lock_path", lockPath)
	}

	slog.Info("Lockfile acquired", "lock_path", lockPath, "pid", os.Getpid())
	return &Lock{file: file, path: lockPath, acquired: true}, nil
}

// Release releases the lock and removes the lock file. Safe to call more than
// once.
func (l *Lock) Release() error {
	if !l.acquired || l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		slog.Error("Lockfile flock release failed", "error", err, "lock_path", l.path)
	}
	if err := l.file.Close(); err != nil {
		slog.Error("Lockfile close failed", "error", err, "lock_path", l.path)
	}
	if err := os.Remove(l.path); err != nil {
		slog.Error("Lockfile remove failed", "error", err, "lock_path", l.path)
	}

	l.acquired = false
	l.file = nil
	slog.Info("Lockfile released", "lock_path", l.path)
	return nil
}

// LockError reports a lock held by another bot instance.
type LockError struct {
	LockPath string
	Holder   string
	Cause    error
}

func (e *LockError) Error() string {
	msg := fmt.Sprintf("another stroyhub-bot instance is using the same state directory (lock file: %s)", e.LockPath)
	if e.Holder != "" {
		msg += fmt.Sprintf(", held by %s", e.Holder)
	}
	return msg
}

func (e *LockError) Unwrap() error {
	return e.Cause
}

// describeHolder reads the existing lock file and reports the owning PID and
// whether that process is still alive.
func describeHolder(lockPath string) string {
	data, err := os.ReadFile(lockPath)
	if err != nil || len(data) == 0 {
		return ""
	}

	pid := extractPID(string(data))
	if pid <= 0 {
		return strings.TrimSpace(string(data))
	}
	if isProcessRunning(pid) {
		return fmt.Sprintf("PID %d (running)", pid)
	}
	return fmt.Sprintf("PID %d (not running, stale lock)", pid)
}

// extractPID pulls the pid=NNNN value out of lock file content.
func extractPID(content string) int {
	const pidPrefix = "pid="
	idx := strings.Index(content, pidPrefix)
	if idx == -1 {
		return 0
	}
	start := idx + len(pidPrefix)
	end := start
	for end < len(content) && content[end] >= '0' && content[end] <= '9' {
		end++
	}
	pid, err := strconv.Atoi(content[start:end])
	if err != nil {
		return 0
	}
	return pid
}

// isProcessRunning probes the PID with signal 0.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
