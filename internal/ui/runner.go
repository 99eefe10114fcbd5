package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vijaygarry/doclava/internal/pipeline"
)

type outcome[T any] struct {
	result T
	err    error
}

// Run executes work on a separate goroutine while a progress view renders
// its events to out. The work error wins over a UI error.
func Run[T any](title string, files []string, out io.Writer, work func(sink pipeline.ProgressSink) (T, error)) (T, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan outcome[T], 1)

	go func() {
		res, err := work(pipeline.ChannelSink{Ch: events})
		outcomeCh <- outcome[T]{result: res, err: err}
		close(events)
	}()

	model := NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the producer from blocking on a full channel
		go func() {
			for range events {
			}
		}()
	}
	res := <-outcomeCh
	if res.err != nil {
		return res.result, res.err
	}
	return res.result, uiErr
}
