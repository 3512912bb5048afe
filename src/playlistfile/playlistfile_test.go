package playlistfile

import (
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseM3U(t *testing.T) {
	Convey("ParseM3U", t, func() {
		Convey("Should pair titles with paths", func() {
			entries, err := ParseM3U(strings.NewReader("#EXTM3U\r\n#EXTINF:123,Artist - Song\r\nmusic/song.mp3\r\n\r\n# comment\r\nother.flac\r\n"))
			So(err, ShouldBeNil)
			So(entries, ShouldResemble, []Entry{
				{Path: "music/song.mp3", Title: "Artist - Song"},
				{Path: "other.flac", Title: "other.flac"},
			})
		})
		Convey("Should not carry a title past its path", func() {
			entries, err := ParseM3U(strings.NewReader("#EXTINF:-1,First\na.mp3\nb.mp3\n"))
			So(err, ShouldBeNil)
			So(entries[1].Title, ShouldEqual, "b.mp3")
		})
	})
}

func TestParsePLS(t *testing.T) {
	Convey("ParsePLS", t, func() {
		text := "[playlist]\nFile2=b.mp3\nTitle1=First\nFile1=a.mp3\nTitle3=Orphan\nFile10=j.mp3\nNumberOfEntries=3\n"
		entries, err := ParsePLS(strings.NewReader(text))
		So(err, ShouldBeNil)
		So(entries, ShouldResemble, []Entry{
			{Path: "a.mp3", Title: "First"},
			{Path: "b.mp3", Title: "b.mp3"},
			{Path: "j.mp3", Title: "j.mp3"},
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		entries, err := Parse("list.M3U8", strings.NewReader("a.mp3\n"))
		So(err, ShouldBeNil)
		So(len(entries), ShouldEqual, 1)

		_, err = Parse("list.txt", strings.NewReader("a.mp3\n"))
		So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
	})
}

func TestWriteM3U(t *testing.T) {
	Convey("WriteM3U", t, func() {
		var buf strings.Builder
		err := WriteM3U(&buf, []Entry{{Path: "a.mp3", Title: "a.mp3"}, {Path: "b.mp4"}})
		So(err, ShouldBeNil)
		So(buf.String(), ShouldEqual, "#EXTM3U\n#EXTINF:-1,a.mp3\na.mp3\n#EXTINF:-1,Unknown\nb.mp4\n")

		entries, err := ParseM3U(strings.NewReader(buf.String()))
		So(err, ShouldBeNil)
		So(entries[0].Path, ShouldEqual, "a.mp3")
	})
}

func TestEntryBase(t *testing.T) {
	Convey("Entry.Base", t, func() {
		So(Entry{Path: `C:\Music\a.mp3`}.Base(), ShouldEqual, "a.mp3")
		So(Entry{Path: "/home/me/b.mp3"}.Base(), ShouldEqual, "b.mp3")
		So(Entry{Path: "c.mp3"}.Base(), ShouldEqual, "c.mp3")
	})
}
