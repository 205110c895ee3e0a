package cache

// Replacer is an eviction-aware store keyed directly by blob index —
// nothing in this repo ever needs a cache keyed on anything else, so the
// generic string-keyed plumbing the teacher's block cache used is
// narrowed to the one key type this domain has.
type Replacer interface {
	Get(key uint32) interface{}
	Put(key uint32, value interface{})
}

// Node is one entry in an eviction list: the decoded value cached for a
// blob index, plus its position in whichever List currently owns it.
type Node struct {
	key   uint32
	value interface{}
	next  *Node
	prev  *Node
}

// List is a doubly linked list with sentinel head/tail nodes, used as the
// building block for every eviction tier (plain LRU, and the
// window/probation/protected segments of WinTinyLFU).
type List struct {
	head *Node
	tail *Node
	sz   int
}

func newList() *List {
	head := &Node{}
	tail := &Node{}
	head.next = tail
	tail.prev = head
	return &List{head: head, tail: tail}
}

// Remove unlinks node from wherever it currently sits.
func (list *List) Remove(node *Node) *Node {
	list.sz--
	prev, next := node.prev, node.next
	prev.next = next
	next.prev = prev
	node.prev, node.next = nil, nil
	return node
}

// RemoveLast evicts and returns the coldest node in the list.
func (list *List) RemoveLast() *Node {
	return list.Remove(list.tail.prev)
}

// Put2Head inserts node as the most recently touched entry.
func (list *List) Put2Head(node *Node) {
	list.sz++
	next := list.head.next
	node.next = next
	next.prev = node
	node.prev = list.head
	list.head.next = node
}

// InsertAfter splices insert immediately after node.
func (list *List) InsertAfter(node *Node, insert *Node) {
	list.sz++
	next := node.next
	node.next = insert
	insert.next = next
	next.prev = insert
	insert.prev = node
}

// InsertLast appends node just before the tail sentinel.
func (list *List) InsertLast(node *Node) {
	list.sz++
	prev := list.tail.prev
	prev.next = node
	node.prev = prev
	node.next = list.tail
	list.tail.prev = node
}

func (list *List) move2Head(node *Node) {
	list.Remove(node)
	list.Put2Head(node)
}

// Len reports the number of entries currently linked.
func (list *List) Len() int { return list.sz }

// Back returns the coldest entry, or nil if the list is empty.
func (list *List) Back() *Node {
	if list.tail.prev == list.head {
		return nil
	}
	return list.tail.prev
}
