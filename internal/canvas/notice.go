package canvas

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notification is a non-blocking message shown until dismissed or replaced.
type Notification struct {
	Level   NoticeLevel
	Message string
}
