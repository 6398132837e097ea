package cmd

import (
	"context"
	"io"

	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"boscoin.io/xcb/cmd/xcbtrace/common"
	"boscoin.io/xcb/pkg/transport/record"
	"boscoin.io/xcb/pkg/xcb"
	"boscoin.io/xcb/pkg/xevent"
	"boscoin.io/xcb/pkg/xproto"
)

var flagEventName string

type eventRecord struct {
	Name     string      `json:"name" yaml:"name"`
	Sequence uint16      `json:"sequence" yaml:"sequence"`
	Code     uint8       `json:"code,omitempty" yaml:"code,omitempty"`
	Event    interface{} `json:"event,omitempty" yaml:"event,omitempty"`
	Error    string      `json:"error,omitempty" yaml:"error,omitempty"`
}

var eventsCmd = &cobra.Command{
	Use:   "events <session id>",
	Short: "Replay a session and print the events it received",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		if err := replayEvents(args[0], c.OutOrStdout()); err != nil {
			common.PrintError(c, err)
		}
	},
}

func init() {
	eventsCmd.Flags().BoolVar(&flagMetrics, "metrics", false, "log the connection metrics after the replay")
	eventsCmd.Flags().StringVar(&flagEventName, "name", "", "only print events of this name, ex) Expose")
	rootCmd.AddCommand(eventsCmd)
}

func replayEvents(id string, w io.Writer) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	initMetrics()

	player, err := record.NewPlayer(store, id)
	if err != nil {
		return err
	}
	conn, err := xcb.NewConnection(player, xproto.NewRegistry())
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	loop := xevent.NewLoop(conn)
	var encodeErr error
	encode := func(r eventRecord) {
		if encodeErr != nil {
			return
		}
		if encodeErr = flagFormat.Encode(r, w); encodeErr != nil {
			log.Error("failed to encode event", "error", encodeErr)
		}
	}

	name := xevent.AllEvents
	if len(flagEventName) > 0 {
		name = flagEventName
	}
	loop.On(name, func(e xcb.Event) {
		encode(eventRecord{Name: xcb.EventName(e), Sequence: e.Header().Sequence, Event: e})
	})
	if len(flagEventName) < 1 {
		loop.OnError(func(e xcb.Error) {
			encode(eventRecord{Name: "error", Sequence: e.Header().Sequence, Code: e.ErrorCode(), Error: e.Error()})
		})
	}

	var g run.Group
	{
		ctx, cancel := context.WithCancel(context.Background())
		g.Add(func() error {
			err := loop.Run(ctx)
			if errors.Is(err, record.ErrSessionEnded) {
				return nil
			}
			return err
		}, func(error) {
			cancel()
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return common.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	if err := g.Run(); err != nil {
		return err
	}
	log.Debug("replay finished", "session", id)
	if encodeErr != nil {
		return encodeErr
	}
	return logMetrics()
}
