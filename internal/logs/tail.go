package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"
)

const (
	maxLineBytes        = 1024 * 1024
	defaultPollInterval = 250 * time.Millisecond
)

// Last returns up to limit of the newest entries in path that match filter,
// oldest first, and the offset of the end of the file. A missing file yields
// no entries and offset zero. A limit of zero or less returns every match.
func Last(path string, limit int, filter Filter) ([]Entry, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var ring []Entry
	next := 0
	offset, err := scanEntries(file, filter, func(e Entry) {
		if limit <= 0 || len(ring) < limit {
			ring = append(ring, e)
			return
		}
		ring[next] = e
		next = (next + 1) % limit
	})
	if err != nil {
		return nil, 0, err
	}
	if limit > 0 && len(ring) == limit && next > 0 {
		ring = slices.Concat(ring[next:], ring[:next])
	}
	return ring, offset, nil
}

// FollowOptions configures Follow.
type FollowOptions struct {
	Offset int64
	Filter Filter
	Poll   time.Duration
}

// Follow calls fn for each matching entry appended after opts.Offset until
// ctx is done. When the file shrinks below the last offset it is assumed to
// have been rotated and is read again from the start.
func Follow(ctx context.Context, path string, opts FollowOptions, fn func(Entry)) error {
	poll := opts.Poll
	if poll <= 0 {
		poll = defaultPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	offset := opts.Offset
	for {
		next, err := readFrom(path, offset, opts.Filter, fn)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, filter Filter, fn func(Entry)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if offset == info.Size() {
		return offset, nil
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	read, err := scanEntries(file, filter, fn)
	if err != nil {
		return offset, err
	}
	return offset + read, nil
}

// scanEntries decodes complete lines from r and returns the number of bytes
// consumed. A trailing line without a newline is left for the next read.
func scanEntries(r io.Reader, filter Filter, fn func(Entry)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return consumed, nil
			}
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		if len(line) > maxLineBytes {
			continue
		}
		if e, ok := Parse(line); ok && filter.Match(e) {
			fn(e)
		}
	}
}
