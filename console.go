package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"risk3p/agent"
)

var errInputClosed = errors.New("input closed")

// console shows each pending human decision on out and reads the 1-based
// choice from in. It returns nil when ctx ends and an error when in runs dry
// while a decision is still pending.
func console(ctx context.Context, h *agent.HumanAgent, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	var readErr error
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr = scanner.Err()
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var shown uuid.UUID
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		id, ok := h.PendingRound()
		if !ok || id == shown {
			continue
		}
		state, actions, ok := h.Pending()
		if !ok {
			continue
		}
		shown = id
		fmt.Fprintln(out, state.Text)
		fmt.Fprintf(out, "Your move (1-%d): ", len(actions))

		for {
			var line string
			select {
			case <-ctx.Done():
				return nil
			case l, open := <-lines:
				if !open {
					if readErr != nil {
						return fmt.Errorf("%w: %w", errInputClosed, readErr)
					}
					return errInputClosed
				}
				line = l
			}
			n, err := strconv.Atoi(strings.TrimSpace(line))
			if err == nil {
				err = h.SubmitChoice(n)
			}
			if err == nil || errors.Is(err, agent.ErrNoPendingDecision) {
				break
			}
			fmt.Fprintf(out, "%v. Your move (1-%d): ", err, len(actions))
		}
	}
}
