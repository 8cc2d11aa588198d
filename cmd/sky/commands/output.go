package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/skybridge/skybridge/pkg/cloud"
)

// View structs flatten resource interfaces for JSON output.

type instanceView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	State      string   `json:"state"`
	ImageID    string   `json:"image_id"`
	PublicIPs  []string `json:"public_ips"`
	PrivateIPs []string `json:"private_ips"`
}

type volumeView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	State  string `json:"state"`
	SizeGB int    `json:"size_gb"`
}

type snapshotView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	State    string `json:"state"`
	VolumeID string `json:"volume_id"`
}

type imageView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	Description string `json:"description"`
}

type keyPairView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func instanceViewOf(i cloud.Instance) instanceView {
	return instanceView{
		ID:         i.ID(),
		Name:       i.Name(),
		State:      string(i.State()),
		ImageID:    i.ImageID(),
		PublicIPs:  i.PublicIPs(),
		PrivateIPs: i.PrivateIPs(),
	}
}

func volumeViewOf(v cloud.Volume) volumeView {
	return volumeView{ID: v.ID(), Name: v.Name(), State: string(v.State()), SizeGB: v.SizeGB()}
}

func snapshotViewOf(s cloud.Snapshot) snapshotView {
	return snapshotView{ID: s.ID(), Name: s.Name(), State: string(s.State()), VolumeID: s.VolumeID()}
}

func imageViewOf(m cloud.MachineImage) imageView {
	return imageView{ID: m.ID(), Name: m.Name(), State: string(m.State()), Description: m.Description()}
}

func keyPairViewOf(k cloud.KeyPair) keyPairView {
	return keyPairView{ID: k.ID(), Name: k.Name()}
}

// printResult writes v as indented JSON when --json is set, otherwise as an
// aligned table. v is a view struct or a slice of view structs.
func printResult(w io.Writer, v any) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	switch items := v.(type) {
	case instanceView:
		return printTable(tw, []instanceView{items})
	case []instanceView:
		return printTable(tw, items)
	case volumeView:
		return printTable(tw, []volumeView{items})
	case []volumeView:
		return printTable(tw, items)
	case snapshotView:
		return printTable(tw, []snapshotView{items})
	case []snapshotView:
		return printTable(tw, items)
	case imageView:
		return printTable(tw, []imageView{items})
	case []imageView:
		return printTable(tw, items)
	case keyPairView:
		return printTable(tw, []keyPairView{items})
	case []keyPairView:
		return printTable(tw, items)
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

// printTable renders one row per view struct with a header row.
func printTable[T any](tw *tabwriter.Writer, items []T) error {
	switch rows := any(items).(type) {
	case []instanceView:
		fmt.Fprintln(tw, "ID\tNAME\tSTATE\tIMAGE\tPUBLIC IPS\tPRIVATE IPS")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Name, r.State, r.ImageID,
				strings.Join(r.PublicIPs, ","), strings.Join(r.PrivateIPs, ","))
		}
	case []volumeView:
		fmt.Fprintln(tw, "ID\tNAME\tSTATE\tSIZE_GB")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.ID, r.Name, r.State, r.SizeGB)
		}
	case []snapshotView:
		fmt.Fprintln(tw, "ID\tNAME\tSTATE\tVOLUME")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.State, r.VolumeID)
		}
	case []imageView:
		fmt.Fprintln(tw, "ID\tNAME\tSTATE\tDESCRIPTION")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.State, r.Description)
		}
	case []keyPairView:
		fmt.Fprintln(tw, "ID\tNAME")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\n", r.ID, r.Name)
		}
	}
	return tw.Flush()
}
