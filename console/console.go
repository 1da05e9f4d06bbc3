package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mosaxiv/braveagent/agent"
	"github.com/mosaxiv/braveagent/session"
)

type Responder interface {
	Respond(ctx context.Context, userText string, sess *session.Session) (string, error)
}

type Console struct {
	In      io.Reader
	Out     io.Writer
	Agent   Responder
	Session *session.Session
	Prompt  string
	Banner  string
}

// Run reads one line at a time and answers it before reading the next. It
// returns nil on an exit word, end of input, or context cancellation, and an
// error only when input cannot be read. Turn failures are printed and do not
// stop the loop.
func (c *Console) Run(ctx context.Context) error {
	if c.Session == nil {
		c.Session = session.New("")
	}
	prompt := c.Prompt
	if prompt == "" {
		prompt = "You: "
	}
	if c.Banner != "" {
		fmt.Fprintln(c.Out, c.Banner)
	}

	lines := newLineReader(c.In)
	defer lines.close()
	for {
		fmt.Fprint(c.Out, prompt)
		line, err := lines.next(ctx)
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			fmt.Fprintln(c.Out, "\nGoodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if agent.IsExit(text) {
			fmt.Fprintln(c.Out, "Goodbye!")
			return nil
		}
		if handled, out := agent.HandleCommand(c.Session, text); handled {
			fmt.Fprintln(c.Out, out)
			continue
		}

		reply, err := c.Agent.Respond(ctx, text, c.Session)
		if ctx.Err() != nil {
			fmt.Fprintln(c.Out, "\nGoodbye!")
			return nil
		}
		if err != nil {
			fmt.Fprintf(c.Out, "Error: %v\n", err)
			fmt.Fprintln(c.Out, "Sorry, that turn failed. Please try again.")
			continue
		}
		fmt.Fprintf(c.Out, "\nAgent: %s\n\n", reply)
	}
}

const maxLineBytes = 1 << 20

type lineResult struct {
	text string
	err  error
}

// lineReader scans one line per request, so nothing is read while a turn is
// still being answered.
type lineReader struct {
	reqs chan struct{}
	out  chan lineResult
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{reqs: make(chan struct{}), out: make(chan lineResult, 1)}
	go func() {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for range lr.reqs {
			if !sc.Scan() {
				err := sc.Err()
				if err == nil {
					err = io.EOF
				}
				lr.out <- lineResult{err: err}
				return
			}
			lr.out <- lineResult{text: sc.Text()}
		}
	}()
	return lr
}

func (lr *lineReader) next(ctx context.Context) (string, error) {
	select {
	case lr.reqs <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case res := <-lr.out:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// close stops the scanner goroutine once it is idle.
func (lr *lineReader) close() { close(lr.reqs) }
