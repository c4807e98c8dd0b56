package layout

import "fmt"

// EventKind 区分输入事件流中的事件类型。
type EventKind int

const (
	EventOther EventKind = iota
	EventStartStrong
	EventEndStrong
	EventStartEmphasis
	EventEndEmphasis
	EventStartItem
	EventEndItem
	EventText
	EventEndParagraph
	EventSoftBreak
)

var eventNames = map[EventKind]string{
	EventOther:         "Other",
	EventStartStrong:   "StartStrong",
	EventEndStrong:     "EndStrong",
	EventStartEmphasis: "StartEmphasis",
	EventEndEmphasis:   "EndEmphasis",
	EventStartItem:     "StartItem",
	EventEndItem:       "EndItem",
	EventText:          "Text",
	EventEndParagraph:  "EndParagraph",
	EventSoftBreak:     "SoftBreak",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event 是排版引擎的输入单元。Text 仅对 EventText 有效，Name 记录 EventOther 在源格式中的名称。
type Event struct {
	Kind EventKind `json:"kind"`
	Text string    `json:"text,omitempty"`
	Name string    `json:"name,omitempty"`
}

// 常用事件，便于构造事件流。
var (
	StartStrong   = Event{Kind: EventStartStrong}
	EndStrong     = Event{Kind: EventEndStrong}
	StartEmphasis = Event{Kind: EventStartEmphasis}
	EndEmphasis   = Event{Kind: EventEndEmphasis}
	StartItem     = Event{Kind: EventStartItem}
	EndItem       = Event{Kind: EventEndItem}
	EndParagraph  = Event{Kind: EventEndParagraph}
	SoftBreak     = Event{Kind: EventSoftBreak}
)

// TextEvent 构造文本事件。
func TextEvent(text string) Event {
	return Event{Kind: EventText, Text: text}
}

// OtherEvent 构造引擎会忽略的结构事件。
func OtherEvent(name string) Event {
	return Event{Kind: EventOther, Name: name}
}

func (e Event) String() string {
	switch e.Kind {
	case EventText:
		return fmt.Sprintf("Text(%q)", e.Text)
	case EventOther:
		if e.Name != "" {
			return "Other(" + e.Name + ")"
		}
	}
	return e.Kind.String()
}
