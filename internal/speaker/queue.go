package speaker

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/w4/soncon/internal/apperrors"
	"github.com/w4/soncon/internal/soap"
	"github.com/w4/soncon/internal/xmldoc"
)

// QueueItem is one slot of the playback queue.
type QueueItem struct {
	// Position is 1-based, taken from the suffix of the item's object ID
	// (Q:0/3 -> 3).
	Position    int
	URI         string
	Title       string
	Artist      string
	Album       string
	AlbumArtURI string
	Duration    time.Duration
}

const browsePayload = "<ObjectID>Q:0</ObjectID>" +
	"<BrowseFlag>BrowseDirectChildren</BrowseFlag>" +
	"<Filter>*</Filter>" +
	"<StartingIndex>0</StartingIndex>" +
	"<RequestedCount>0</RequestedCount>" +
	"<SortCriteria></SortCriteria>"

// Queue fetches the group's full playback queue. The list is rebuilt on
// every call; there is no incremental diffing.
func (s *Speaker) Queue(ctx context.Context) ([]QueueItem, error) {
	resp, err := s.Dispatch(ctx, soap.ContentDirectory("Browse", browsePayload), true)
	if err != nil {
		return nil, err
	}

	resultEl, err := resp.Child("Result")
	if err != nil {
		return nil, err
	}
	didl, err := resultEl.Text()
	if err != nil {
		// An empty queue browses to an empty DIDL document.
		return []QueueItem{}, nil
	}

	return parseQueue(didl)
}

func parseQueue(didl string) ([]QueueItem, error) {
	root, err := xmldoc.Parse([]byte(didl))
	if err != nil {
		return nil, err
	}

	items := make([]QueueItem, 0, len(root.Children))
	for _, child := range root.Children {
		if child.Name != "item" {
			continue
		}
		item, err := parseQueueItem(child)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func parseQueueItem(el *xmldoc.Element) (QueueItem, error) {
	position, err := queuePosition(el.Attr("id"))
	if err != nil {
		return QueueItem{}, err
	}

	title, err := el.ChildText("title")
	if err != nil {
		return QueueItem{}, err
	}

	res, err := el.Child("res")
	if err != nil {
		return QueueItem{}, err
	}
	uri, err := res.Text()
	if err != nil {
		return QueueItem{}, err
	}

	item := QueueItem{
		Position: position,
		URI:      uri,
		Title:    title,
	}

	// Artist, album and art are not guaranteed on every source.
	if creator, creatorErr := el.Child("creator"); creatorErr == nil {
		item.Artist, _ = creator.Text()
	}
	if album, albumErr := el.Child("album"); albumErr == nil {
		item.Album, _ = album.Text()
	}
	if art, artErr := el.Child("albumArtURI"); artErr == nil {
		item.AlbumArtURI, _ = art.Text()
	}
	if durationAttr := res.Attr("duration"); durationAttr != "" {
		duration, durationErr := ParseClockDuration(durationAttr)
		if durationErr != nil {
			return QueueItem{}, durationErr
		}
		item.Duration = duration
	}

	return item, nil
}

// queuePosition takes the numeric suffix after the last / of a composite
// object identifier like Q:0/3.
func queuePosition(objectID string) (int, error) {
	idx := strings.LastIndex(objectID, "/")
	if idx < 0 || idx == len(objectID)-1 {
		return 0, apperrors.NewParse("queue item id " + objectID)
	}
	position, err := strconv.Atoi(objectID[idx+1:])
	if err != nil {
		return 0, apperrors.NewParseWrap("queue item id "+objectID, err)
	}
	return position, nil
}
