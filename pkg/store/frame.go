package store

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bbs/pkg/models"
)

// Separator marks the start of every framed block. A reader that hits a
// truncated or malformed block resynchronizes by skipping to the next
// separator line.
const Separator = "===="

// Field labels used in framed record blocks.
const (
	labelID      = "ID: "
	labelPoster  = "Poster: "
	labelSubject = "Subject: "
	labelText    = "Text: "
)

// WriteMessageFrame writes one framed record block to w. The same routine
// serves the record shard files and console rendering; any io.Writer is a
// valid sink.
func WriteMessageFrame(w io.Writer, m models.Message) error {
	_, err := fmt.Fprintf(w, "%s\n%s%d\n%s%s\n%s%s\n%s%s\n",
		Separator, labelID, m.ID, labelPoster, m.Author, labelSubject, m.Subject, labelText, m.Body)
	return err
}

// WriteSummaryFrame writes one framed summary block to w: the ID line
// followed by a single combined `<author>/<subject>/` line.
func WriteSummaryFrame(w io.Writer, s models.Summary) error {
	_, err := fmt.Fprintf(w, "%s\n%s%d\n%s/%s/\n", Separator, labelID, s.ID, s.Author, s.Subject)
	return err
}

// WriteSummaryLabeled writes the human-readable summary form: labeled
// author and subject lines, no body. Used for console rendering.
func WriteSummaryLabeled(w io.Writer, s models.Summary) error {
	_, err := fmt.Fprintf(w, "%s\n%s%d\n%s%s\n%s%s\n",
		Separator, labelID, s.ID, labelPoster, s.Author, labelSubject, s.Subject)
	return err
}

// scanBlocks streams separator-delimited line blocks from r. Content before
// the first separator is discarded, which is what resynchronization after a
// partial write amounts to.
func scanBlocks(r io.Reader, fn func(lines []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var block []string
	started := false
	flush := func() error {
		if !started || len(block) == 0 {
			return nil
		}
		return fn(block)
	}
	for sc.Scan() {
		line := sc.Text()
		if line == Separator {
			if err := flush(); err != nil {
				return err
			}
			block = block[:0]
			started = true
			continue
		}
		if started {
			block = append(block, line)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return flush()
}

// scanMessages streams parsed record blocks from r. Malformed or truncated
// blocks are skipped; the scan resumes at the next separator.
func scanMessages(r io.Reader, fn func(models.Message) error) error {
	return scanBlocks(r, func(lines []string) error {
		m, ok := parseMessageBlock(lines)
		if !ok {
			return nil
		}
		return fn(m)
	})
}

// scanSummaryEntries streams parsed summary blocks from r, skipping
// malformed blocks the same way scanMessages does.
func scanSummaryEntries(r io.Reader, fn func(models.Summary) error) error {
	return scanBlocks(r, func(lines []string) error {
		s, ok := parseSummaryBlock(lines)
		if !ok {
			return nil
		}
		return fn(s)
	})
}

func parseMessageBlock(lines []string) (models.Message, bool) {
	if len(lines) < 4 {
		return models.Message{}, false
	}
	id, ok := parseIDLine(lines[0])
	if !ok {
		return models.Message{}, false
	}
	if !strings.HasPrefix(lines[1], labelPoster) ||
		!strings.HasPrefix(lines[2], labelSubject) ||
		!strings.HasPrefix(lines[3], labelText) {
		return models.Message{}, false
	}
	return models.Message{
		ID:      id,
		Author:  strings.TrimPrefix(lines[1], labelPoster),
		Subject: strings.TrimPrefix(lines[2], labelSubject),
		Body:    strings.TrimPrefix(lines[3], labelText),
	}, true
}

func parseSummaryBlock(lines []string) (models.Summary, bool) {
	if len(lines) < 2 {
		return models.Summary{}, false
	}
	id, ok := parseIDLine(lines[0])
	if !ok {
		return models.Summary{}, false
	}
	// combined line: <author>/<subject>/ — authors cannot contain '/',
	// subjects may, so split at the first slash only.
	combined := lines[1]
	if !strings.HasSuffix(combined, "/") {
		return models.Summary{}, false
	}
	combined = strings.TrimSuffix(combined, "/")
	author, subject, found := strings.Cut(combined, "/")
	if !found {
		return models.Summary{}, false
	}
	return models.Summary{ID: id, Author: author, Subject: subject}, true
}

func parseIDLine(line string) (int, bool) {
	if !strings.HasPrefix(line, labelID) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, labelID)))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
