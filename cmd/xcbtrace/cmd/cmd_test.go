package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boscoin.io/xcb/cmd/xcbtrace/common"
	"boscoin.io/xcb/pkg/metrics"
	"boscoin.io/xcb/pkg/rawdb"
	"boscoin.io/xcb/pkg/transport/memory"
	"boscoin.io/xcb/pkg/transport/record"
	"boscoin.io/xcb/pkg/version"
	"boscoin.io/xcb/pkg/wire"
	"boscoin.io/xcb/pkg/xcb"
	"boscoin.io/xcb/pkg/xproto"
)

// recordFixture writes one session with two events and an error into a
// fresh leveldb directory.
func recordFixture(t *testing.T) (string, string) {
	dir, err := ioutil.TempDir("", "xcbtrace")
	require.NoError(t, err)

	db, err := rawdb.NewLevelDb(dir)
	require.NoError(t, err)
	defer db.Close()

	screen := xproto.Screen{Root: 0x1e3, WidthInPixels: 1024, HeightInPixels: 768, RootDepth: 24}
	screen.AllowedDepths = wire.NewList(xproto.Depth{Depth: 24}, xproto.Depth{Depth: 1})
	screen.AllowedDepthsLen = 2
	tr := memory.New(wire.Pack(xproto.NewSetup("fixture", nil, []xproto.Screen{screen})))

	expose := &xproto.ExposeEvent{Window: 5}
	expose.ResponseType = xproto.Expose
	tr.PushEvent(wire.Pack(expose))
	mapped := &xproto.MapNotifyEvent{Window: 6}
	mapped.ResponseType = xproto.MapNotify
	tr.PushEvent(wire.Pack(mapped))
	bad := &wire.ErrorResponse{Code: xproto.BadAtom}
	tr.PushEvent(wire.Pack(bad))

	rec, err := record.NewRecorder(tr, record.NewStore(db), ":0", record.WithMetrics(metrics.NopRecordMetrics()))
	require.NoError(t, err)
	conn, err := xcb.NewConnection(rec, xproto.NewRegistry())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := conn.WaitForEvent(context.Background())
		if i < 2 {
			require.NoError(t, err)
		}
	}
	conn.Disconnect()

	return dir, rec.Session().ID
}

func execute(t *testing.T, args ...string) string {
	var b bytes.Buffer
	rootCmd.SetOutput(&b)
	defer rootCmd.SetOutput(nil)

	SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return b.String()
}

func TestCommands(t *testing.T) {
	dir, id := recordFixture(t)
	defer os.RemoveAll(dir)

	{ // sessions
		out := execute(t, "sessions", "--db", dir, "--format", "json", "--log-level", "error")
		var sessions []record.Session
		require.NoError(t, json.Unmarshal([]byte(out), &sessions))
		require.Len(t, sessions, 1)
		assert.Equal(t, id, sessions[0].ID)
		assert.Equal(t, ":0", sessions[0].Display)
	}

	{ // setup
		out := execute(t, "setup", id, "--db", dir, "--format", "json")
		var summary setupSummary
		require.NoError(t, json.Unmarshal([]byte(out), &summary))
		assert.Equal(t, "fixture", summary.Vendor)
		assert.Equal(t, "11.0", summary.ProtocolVersion)
		require.Len(t, summary.Screens, 1)
		assert.Equal(t, uint16(1024), summary.Screens[0].Width)
		assert.Equal(t, []uint8{24, 1}, summary.Screens[0].Depths)
	}

	{ // events
		out := execute(t, "events", id, "--db", dir, "--format", "json", "--name", "")
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)

		var names []string
		for _, line := range lines {
			var r eventRecord
			require.NoError(t, json.Unmarshal([]byte(line), &r))
			names = append(names, r.Name)
		}
		assert.Equal(t, []string{"Expose", "MapNotify", "error"}, names)
	}

	{ // events filtered by name
		out := execute(t, "events", id, "--db", dir, "--format", "json", "--name", "MapNotify", "--metrics")
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "MapNotify")
	}

	{ // export, then import into another store
		f, err := ioutil.TempFile("", "xcbtrace-archive")
		require.NoError(t, err)
		f.Close()
		archive := f.Name()
		defer os.Remove(archive)

		execute(t, "export", id, archive, "--db", dir)

		// the archive is readable without a database
		out := execute(t, "sessions", "--archive", archive, "--format", "json")
		var archived []record.Session
		require.NoError(t, json.Unmarshal([]byte(out), &archived))
		require.Len(t, archived, 1)
		assert.Equal(t, id, archived[0].ID)

		out = execute(t, "events", id, "--archive", archive, "--format", "json", "--name", "Expose")
		assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
		assert.Contains(t, out, "Expose")
		flagArchive = ""

		other, err := ioutil.TempDir("", "xcbtrace")
		require.NoError(t, err)
		defer os.RemoveAll(other)

		out = execute(t, "import", archive, "--db", other, "--format", "json")
		var session record.Session
		require.NoError(t, json.Unmarshal([]byte(out), &session))
		assert.Equal(t, id, session.ID)
	}

	{ // rm
		execute(t, "rm", id, "--db", dir)
		out := execute(t, "sessions", "--db", dir, "--format", "json")
		assert.Equal(t, "null", strings.TrimSpace(out))
	}
}

func TestVersion(t *testing.T) {
	out := execute(t, "version")
	assert.Equal(t, version.ToDetailVersion()+"\n", out)
}

func TestFlagFormat(t *testing.T) {
	f := common.NewFlagFormat("yaml")
	assert.Equal(t, "yaml", f.String())
	assert.Equal(t, "format", f.Type())
	assert.Error(t, f.Set("xml"))
	assert.Equal(t, "yaml", f.String())

	var b bytes.Buffer
	require.NoError(t, f.Encode(map[string]int{"a": 1}, &b))
	assert.Equal(t, "a: 1\n", b.String())

	assert.Equal(t, []string{"json", "prettyjson", "yaml"}, common.Formats())
}
