package domain

import "time"

// NodeKind tags each node of a DocumentTree.
type NodeKind string

const (
	NodeHeader      NodeKind = "header"
	NodeTextHeader  NodeKind = "text_header"
	NodeSeparator   NodeKind = "separator"
	NodeTitle       NodeKind = "title"
	NodeBullet      NodeKind = "bullet"
	NodeTable       NodeKind = "table"
	NodePlaceholder NodeKind = "placeholder"
	NodeFooter      NodeKind = "footer"
)

// Node is one element of a DocumentTree. The set of implementations is closed.
type Node interface {
	Kind() NodeKind
}

// HeaderNode is the branded header: logo (or blank of equal width), identity, metadata panel.
type HeaderNode struct {
	Brand       BrandAsset
	Company     CompanyIdentity
	GeneratedAt time.Time
	ReportID    string
	StatusMark  string
}

// TextHeaderNode is the minimal header used when the branded one could not be built.
type TextHeaderNode struct {
	Company     CompanyIdentity
	GeneratedAt time.Time
}

// SeparatorNode is a horizontal rule.
type SeparatorNode struct{}

// TitleNode names the report.
type TitleNode struct {
	Text string
}

// BulletNode is one metadata line such as an active filter.
type BulletNode struct {
	Label string
	Value string
}

// TableNode is one report section followed by its provenance caption.
type TableNode struct {
	Table   TableDescription
	Caption string
}

// PlaceholderNode replaces the body when the report yields no sections.
type PlaceholderNode struct {
	Text string
}

// FooterNode closes the document.
type FooterNode struct {
	Text string
}

func (HeaderNode) Kind() NodeKind      { return NodeHeader }
func (TextHeaderNode) Kind() NodeKind  { return NodeTextHeader }
func (SeparatorNode) Kind() NodeKind   { return NodeSeparator }
func (TitleNode) Kind() NodeKind       { return NodeTitle }
func (BulletNode) Kind() NodeKind      { return NodeBullet }
func (TableNode) Kind() NodeKind       { return NodeTable }
func (PlaceholderNode) Kind() NodeKind { return NodePlaceholder }
func (FooterNode) Kind() NodeKind      { return NodeFooter }

// Orientation of the rendered page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// DocumentTree is the engine-agnostic description of a printable report.
// It is immutable once built: Nodes returns a copy.
type DocumentTree struct {
	title       string
	orientation Orientation
	nodes       []Node
}

// NewDocumentTree freezes nodes into a tree.
func NewDocumentTree(title string, orientation Orientation, nodes []Node) DocumentTree {
	frozen := make([]Node, len(nodes))
	copy(frozen, nodes)
	return DocumentTree{title: title, orientation: orientation, nodes: frozen}
}

// Title is used for the running page header and the file name.
func (d DocumentTree) Title() string { return d.title }

// Orientation of the pages.
func (d DocumentTree) Orientation() Orientation { return d.orientation }

// Nodes returns the nodes in document order.
func (d DocumentTree) Nodes() []Node {
	out := make([]Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// Len is the number of nodes.
func (d DocumentTree) Len() int { return len(d.nodes) }

// Tables returns the table nodes in order.
func (d DocumentTree) Tables() []TableNode {
	var out []TableNode
	for _, n := range d.nodes {
		if t, ok := n.(TableNode); ok {
			out = append(out, t)
		}
	}
	return out
}
