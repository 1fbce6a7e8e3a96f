package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/arturojer/quantummus/internal/handlog"
)

// HandHistoryCmd is the root command for hand log utilities.
type HandHistoryCmd struct {
	List HandHistoryListCmd `cmd:"list" help:"List recorded rooms"`
	Show HandHistoryShowCmd `cmd:"show" help:"Print the hands of one room"`
}

// HandHistoryListCmd lists room directories under a hand log root.
type HandHistoryListCmd struct {
	Dir string `arg:"" optional:"" default:"hands" help:"Hand log root directory"`
}

func (cmd HandHistoryListCmd) Run() error {
	return listRooms(os.Stdout, cmd.Dir)
}

// HandHistoryShowCmd prints the hands recorded for one room.
type HandHistoryShowCmd struct {
	Room  string `arg:"" name:"room" help:"Room directory"`
	Limit int    `help:"Maximum number of hands to print (0 = all)"`
	Hand  int    `help:"Print only this hand sequence number"`
}

func (cmd HandHistoryShowCmd) Run() error {
	if cmd.Room == "" {
		return errors.New("hand-history show requires a room directory")
	}
	return showRoom(os.Stdout, cmd.Room, cmd.Limit, cmd.Hand)
}

func listRooms(w io.Writer, dir string) error {
	rooms, err := handlog.ListRooms(dir)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		_, err := fmt.Fprintf(w, "no rooms recorded under %s\n", dir)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tMODE\tHANDS\tSCORE\tWINNER\tUPDATED")
	for _, path := range rooms {
		info, err := handlog.ReadRoomInfo(path)
		if err != nil {
			fmt.Fprintf(tw, "%s\t?\t?\t?\t?\t%v\n", filepath.Base(path), err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			filepath.Base(path), info.Mode, info.Hands, formatScores(info.Scores),
			winnerName(info), info.Updated.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func showRoom(w io.Writer, dir string, limit, only int) error {
	info, err := handlog.ReadRoomInfo(dir)
	if err != nil {
		return fmt.Errorf("read room info: %w", err)
	}
	hands, err := handlog.ReadHands(dir)
	if err != nil {
		return err
	}
	if len(hands) == 0 {
		return fmt.Errorf("no hands found in %s", dir)
	}

	fmt.Fprintf(w, "room %s  mode %s  players %s\n", info.Room, info.Mode, strings.Join(info.Players, ", "))
	if len(info.TeamNames) == 2 {
		fmt.Fprintf(w, "teams A=%s B=%s\n", info.TeamNames[0], info.TeamNames[1])
	}

	printed := 0
	for _, h := range hands {
		if only > 0 && h.Seq != only {
			continue
		}
		if limit > 0 && printed >= limit {
			break
		}
		printed++
		printHand(w, h)
	}
	if printed == 0 {
		return fmt.Errorf("hand %d not found in %s", only, dir)
	}
	_, err = fmt.Fprintf(w, "\nfinal %s after %d hands%s\n", formatScores(info.Scores), info.Hands, winnerSuffix(info))
	return err
}

func printHand(w io.Writer, h handlog.Record) {
	fmt.Fprintf(w, "\n#%d hand %d  mano s%d  mus rounds %d  %s\n",
		h.Seq, h.Hand, h.Mano, h.MusRounds, h.Time.Format("15:04:05"))
	for seat, cards := range h.Cards {
		line := fmt.Sprintf("  s%d %s", seat, cards)
		if seat < len(h.Revealed) {
			line += "  => " + h.Revealed[seat]
		}
		fmt.Fprintln(w, line)
	}
	for _, a := range h.Actions {
		fmt.Fprintf(w, "  %s\n", a)
	}
	for _, c := range h.Collapses {
		fmt.Fprintf(w, "  ~ %s\n", c)
	}
	for _, r := range h.Results {
		who := r.Winner
		if who == "" {
			who = "-"
		}
		fmt.Fprintf(w, "  %-9s %-14s stake %-2d winner %s +%d\n", r.Phase, r.Outcome, r.Stake, who, r.Points)
	}
	if len(h.Penalties) == 2 && (h.Penalties[0] > 0 || h.Penalties[1] > 0) {
		fmt.Fprintf(w, "  penalties A -%d B -%d\n", h.Penalties[0], h.Penalties[1])
	}
	fmt.Fprintf(w, "  score %s\n", formatScores(h.Scores))
}

func formatScores(scores []int) string {
	if len(scores) != 2 {
		return "-"
	}
	return fmt.Sprintf("%d-%d", scores[0], scores[1])
}

func winnerName(info handlog.RoomInfo) string {
	if info.Winner == "" {
		return "-"
	}
	return info.Winner
}

func winnerSuffix(info handlog.RoomInfo) string {
	if info.Winner == "" {
		return ""
	}
	return ", winner " + info.Winner
}
