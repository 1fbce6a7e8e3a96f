package handlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// ReadRoomInfo loads room.toml from dir.
func ReadRoomInfo(dir string) (RoomInfo, error) {
	var info RoomInfo
	if _, err := toml.DecodeFile(filepath.Join(dir, roomFilename), &info); err != nil {
		return RoomInfo{}, err
	}
	return info, nil
}

// ReadHands loads every hand of a room directory in hand order.
func ReadHands(dir string) ([]Record, error) {
	raw, err := os.ReadFile(filepath.Join(filepath.Clean(dir), handsFilename))
	if err != nil {
		return nil, err
	}
	sections := make(map[string]Record)
	if _, err := toml.Decode(string(raw), &sections); err != nil {
		return nil, fmt.Errorf("handlog: decode %s: %w", dir, err)
	}
	keys := make([]string, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return sectionIndex(keys[i]) < sectionIndex(keys[j]) })

	hands := make([]Record, 0, len(keys))
	for _, k := range keys {
		hands = append(hands, sections[k])
	}
	return hands, nil
}

func sectionIndex(key string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(key, sectionPrefix))
	if err != nil {
		return -1
	}
	return n
}

// ListRooms returns the room directories under baseDir that hold a log.
func ListRooms(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var rooms []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(baseDir, e.Name(), roomFilename)); err == nil {
			rooms = append(rooms, filepath.Join(baseDir, e.Name()))
		}
	}
	return rooms, nil
}
