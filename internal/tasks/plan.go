// Package tasks models the markdown checkbox task plan (project_task.md).
//
// Items look like "[ ] 1. Phase", "- [ ] 1.1. Group" or "  - [ ] 1.1.1. Task".
// The dotted number is the item ID and defines the hierarchy. Only the
// marker characters are rewritten; every other byte of the document is kept.
package tasks

import (
	"fmt"
	"regexp"
	"strings"
)

// Status is the checkbox marker.
type Status string

const (
	StatusPending    Status = " "
	StatusInProgress Status = "-"
	StatusDone       Status = "x"
)

// String returns a readable status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in-progress"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// itemPattern captures the marker and the dotted ID of a plan line.
var itemPattern = regexp.MustCompile(`^\s*(?:-\s+)?\[([ xX-])\]\s+(\d+(?:\.\d+)*)\.?\s+(.*?)\s*$`)

// Item is one checkbox line.
type Item struct {
	ID     string
	Name   string
	Status Status

	line   int // index into Plan.lines
	marker int // byte offset of the status character in the line
}

// Depth returns the number of ID segments (1 for a phase).
func (it *Item) Depth() int {
	return strings.Count(it.ID, ".") + 1
}

// ParentID returns the ID of the enclosing item, or "" for a phase.
func (it *Item) ParentID() string {
	i := strings.LastIndex(it.ID, ".")
	if i < 0 {
		return ""
	}
	return it.ID[:i]
}

// Label returns "ID. Name".
func (it *Item) Label() string {
	return it.ID + ". " + it.Name
}

// Plan is a parsed task document.
type Plan struct {
	lines []string
	items []*Item
	byID  map[string]*Item
	kids  map[string][]*Item
}

// Parse reads a plan document.
func Parse(data []byte) (*Plan, error) {
	p := &Plan{
		lines: strings.Split(string(data), "\n"),
		byID:  map[string]*Item{},
		kids:  map[string][]*Item{},
	}

	for i, line := range p.lines {
		m := itemPattern.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		it := &Item{
			ID:     line[m[4]:m[5]],
			Name:   line[m[6]:m[7]],
			Status: Status(strings.ToLower(line[m[2]:m[3]])),
			line:   i,
			marker: m[2],
		}
		if _, dup := p.byID[it.ID]; dup {
			continue
		}
		p.items = append(p.items, it)
		p.byID[it.ID] = it
		p.kids[it.ParentID()] = append(p.kids[it.ParentID()], it)
	}

	if len(p.items) == 0 {
		return nil, ErrNoPlanItems
	}
	return p, nil
}

// Bytes returns the document with current statuses.
func (p *Plan) Bytes() []byte {
	return []byte(strings.Join(p.lines, "\n"))
}

// Items returns every item in document order.
func (p *Plan) Items() []*Item {
	return p.items
}

// Get returns the item with id.
func (p *Plan) Get(id string) (*Item, bool) {
	it, ok := p.byID[id]
	return it, ok
}

// Children returns the direct children of id.
func (p *Plan) Children(id string) []*Item {
	return p.kids[id]
}

// IsLeaf reports whether it has no children.
func (p *Plan) IsLeaf(it *Item) bool {
	return len(p.kids[it.ID]) == 0
}

// Leaves returns the actionable items in document order.
func (p *Plan) Leaves() []*Item {
	var leaves []*Item
	for _, it := range p.items {
		if p.IsLeaf(it) {
			leaves = append(leaves, it)
		}
	}
	return leaves
}

// Current returns the first in-progress leaf, or nil.
func (p *Plan) Current() *Item {
	return p.firstLeaf(StatusInProgress)
}

// NextPending returns the first pending leaf, or nil.
func (p *Plan) NextPending() *Item {
	return p.firstLeaf(StatusPending)
}

func (p *Plan) firstLeaf(s Status) *Item {
	for _, it := range p.Leaves() {
		if it.Status == s {
			return it
		}
	}
	return nil
}

// Ancestors returns the chain of parents of it, nearest first.
func (p *Plan) Ancestors(it *Item) []*Item {
	var chain []*Item
	for id := it.ParentID(); id != ""; {
		parent, ok := p.byID[id]
		if !ok {
			break
		}
		chain = append(chain, parent)
		id = parent.ParentID()
	}
	return chain
}

// Start marks id in progress, along with its pending ancestors.
func (p *Plan) Start(id string) (*Item, error) {
	it, ok := p.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	p.set(it, StatusInProgress)
	for _, a := range p.Ancestors(it) {
		if a.Status == StatusPending {
			p.set(a, StatusInProgress)
		}
	}
	return it, nil
}

// Complete marks id done. Ancestors whose children are all done become done.
func (p *Plan) Complete(id string) (*Item, error) {
	it, ok := p.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	p.set(it, StatusDone)
	for _, a := range p.Ancestors(it) {
		if !p.allDone(a.ID) {
			break
		}
		p.set(a, StatusDone)
	}
	return it, nil
}

func (p *Plan) allDone(id string) bool {
	for _, c := range p.kids[id] {
		if c.Status != StatusDone {
			return false
		}
	}
	return true
}

func (p *Plan) set(it *Item, s Status) {
	line := p.lines[it.line]
	p.lines[it.line] = line[:it.marker] + string(s) + line[it.marker+1:]
	it.Status = s
}

// Counts summarizes leaf progress.
type Counts struct {
	Total      int `json:"total"`
	Done       int `json:"done"`
	InProgress int `json:"in_progress"`
	Pending    int `json:"pending"`
}

// Percent returns the share of done leaves, 0-100.
func (c Counts) Percent() int {
	if c.Total == 0 {
		return 0
	}
	return c.Done * 100 / c.Total
}

// Counts tallies leaf statuses.
func (p *Plan) Counts() Counts {
	var c Counts
	for _, it := range p.Leaves() {
		c.Total++
		switch it.Status {
		case StatusDone:
			c.Done++
		case StatusInProgress:
			c.InProgress++
		default:
			c.Pending++
		}
	}
	return c
}
