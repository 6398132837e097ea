package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"boscoin.io/xcb/cmd/xcbtrace/common"
	"boscoin.io/xcb/pkg/xproto"
)

type screenSummary struct {
	Root       uint32  `json:"root" yaml:"root"`
	Width      uint16  `json:"width" yaml:"width"`
	Height     uint16  `json:"height" yaml:"height"`
	RootDepth  uint8   `json:"root_depth" yaml:"root_depth"`
	RootVisual uint32  `json:"root_visual" yaml:"root_visual"`
	Depths     []uint8 `json:"depths" yaml:"depths"`
}

type setupSummary struct {
	Session              string          `json:"session" yaml:"session"`
	Vendor               string          `json:"vendor" yaml:"vendor"`
	ProtocolVersion      string          `json:"protocol_version" yaml:"protocol_version"`
	ReleaseNumber        uint32          `json:"release_number" yaml:"release_number"`
	ResourceIDBase       uint32          `json:"resource_id_base" yaml:"resource_id_base"`
	MaximumRequestLength uint16          `json:"maximum_request_length" yaml:"maximum_request_length"`
	PixmapFormats        int             `json:"pixmap_formats" yaml:"pixmap_formats"`
	Screens              []screenSummary `json:"screens" yaml:"screens"`
}

var setupCmd = &cobra.Command{
	Use:   "setup <session id>",
	Short: "Print the connection setup of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		if err := printSetup(c, args[0]); err != nil {
			common.PrintError(c, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func summarizeSetup(id string, setup *xproto.Setup) setupSummary {
	s := setupSummary{
		Session:              id,
		Vendor:               setup.VendorString(),
		ProtocolVersion:      fmt.Sprintf("%d.%d", setup.ProtocolMajorVersion, setup.ProtocolMinorVersion),
		ReleaseNumber:        setup.ReleaseNumber,
		ResourceIDBase:       setup.ResourceIDBase,
		MaximumRequestLength: setup.MaximumRequestLength,
		PixmapFormats:        setup.PixmapFormats.Len(),
	}
	for _, screen := range setup.Roots.Items {
		summary := screenSummary{
			Root:       screen.Root,
			Width:      screen.WidthInPixels,
			Height:     screen.HeightInPixels,
			RootDepth:  screen.RootDepth,
			RootVisual: screen.RootVisual,
		}
		for _, depth := range screen.AllowedDepths.Items {
			summary.Depths = append(summary.Depths, depth.Depth)
		}
		s.Screens = append(s.Screens, summary)
	}
	return s
}

func printSetup(c *cobra.Command, id string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	raw, err := store.Setup(id)
	if err != nil {
		return err
	}
	decoded, err := xproto.DecodeSetup(raw)
	if err != nil {
		return err
	}

	return flagFormat.Encode(summarizeSetup(id, decoded.(*xproto.Setup)), c.OutOrStdout())
}
