package file

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPermissionOctal is the default file and folder permission octal
// used throughout the forecaster
const DefaultPermissionOctal os.FileMode = 0o770

var (
	errNoPath          = errors.New("no file path provided")
	errNoRecords       = errors.New("no records to write")
	errMisalignedRows  = errors.New("csv record length does not match header length")
	errNoFilesInFolder = errors.New("no matching files in folder")
)

// Write writes selected data to a file or returns an error if it fails. This
// func also ensures that all files are set to this permission (only rw access
// for the running user and the group the user is a member of)
func Write(file string, data []byte) error {
	if file == "" {
		return errNoPath
	}
	basePath := filepath.Dir(file)
	if !Exists(basePath) {
		if err := os.MkdirAll(basePath, DefaultPermissionOctal); err != nil {
			return err
		}
	}
	return os.WriteFile(file, data, DefaultPermissionOctal)
}

// Writer creates a writer to a file or returns an error if it fails. This
// func also ensures that all files are set to this permission (only rw access
// for the running user and the group the user is a member of)
func Writer(file string) (*os.File, error) {
	if file == "" {
		return nil, errNoPath
	}
	basePath := filepath.Dir(file)
	if err := os.MkdirAll(basePath, DefaultPermissionOctal); err != nil {
		return nil, err
	}
	return os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultPermissionOctal)
}

// Exists returns whether or not a file or path exists
func Exists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// WriteAsCSV takes a table of records and writes it as CSV. Every record must
// be as wide as the first one
func WriteAsCSV(filename string, records [][]string) error {
	if len(records) == 0 {
		return errNoRecords
	}
	for i := range records {
		if len(records[i]) != len(records[0]) {
			return fmt.Errorf("%w: row %d", errMisalignedRows, i)
		}
	}
	f, err := Writer(filename)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err = w.WriteAll(records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LatestFile returns the lexically greatest file name in dir with the supplied
// extension. Timestamp named files therefore resolve to the most recent one
func LatestFile(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var names []string
	for i := range entries {
		if entries[i].IsDir() || !strings.HasSuffix(entries[i].Name(), ext) {
			continue
		}
		names = append(names, entries[i].Name())
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: %s *%s", errNoFilesInFolder, dir, ext)
	}
	sort.Strings(names)
	return names[len(names)-1], nil
}
