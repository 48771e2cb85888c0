package registry

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"sync"
)

const jsonRegistryPath = "nodes.json"

// JSONRegistry is used to provide node persistence on disk in the form of a
// JSON file. This allows human operators to edit the directory.
type JSONRegistry struct {
	l    sync.Mutex
	path string
}

// NewJSONRegistry creates a new JSONRegistry with reference to a base
// directory where the nodes.json file resides.
func NewJSONRegistry(base string) *JSONRegistry {
	return &JSONRegistry{
		path: filepath.Join(base, jsonRegistryPath),
	}
}

// Path returns the location of the underlying file.
func (j *JSONRegistry) Path() string {
	return j.path
}

// Registry parses the underlying JSON file and returns the corresponding
// Registry.
func (j *JSONRegistry) Registry() (*Registry, error) {
	j.l.Lock()
	defer j.l.Unlock()

	// Read the file
	buf, err := ioutil.ReadFile(j.path)
	if err != nil {
		return nil, err
	}

	// Decode the nodes
	var nodes []*Node
	dec := json.NewDecoder(bytes.NewReader(buf))
	if err := dec.Decode(&nodes); err != nil {
		return nil, err
	}

	return NewRegistry(nodes)
}

// Write persists a list of nodes to the JSON file.
func (j *JSONRegistry) Write(nodes []*Node) error {
	j.l.Lock()
	defer j.l.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "\t")
	if err := enc.Encode(nodes); err != nil {
		return err
	}

	// Write out as JSON
	return ioutil.WriteFile(j.path, buf.Bytes(), 0644)
}
