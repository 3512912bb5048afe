package api

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"webvlc/src/command"
	"webvlc/src/media"
	"webvlc/src/player"
	"webvlc/src/util"
	"webvlc/src/util/eventsource"
)

type jsonEntry struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Size        int64      `json:"size"`
	SizeText    string     `json:"size_text,omitempty"`
	Kind        media.Kind `json:"kind"`
	Placeholder bool       `json:"placeholder"`
}

func jsonEntries(entries []player.Entry) []jsonEntry {
	out := make([]jsonEntry, len(entries))
	for i, entry := range entries {
		out[i] = jsonEntry{
			ID:          entry.ID,
			Name:        entry.Name,
			Size:        entry.Size,
			Kind:        media.MediaKind(entry.Name),
			Placeholder: entry.IsPlaceholder(),
		}
		if !entry.IsPlaceholder() {
			out[i].SizeText = humanize.Bytes(uint64(entry.Size))
		}
	}
	return out
}

func seconds(d time.Duration) float64 {
	if d == player.UnknownDuration {
		return -1
	}
	return d.Seconds()
}

func jsonState(state player.State) interface{} {
	var struc struct {
		Playlist     []jsonEntry          `json:"playlist"`
		CurrentIndex int                  `json:"current_index"`
		ShuffleOrder []int                `json:"shuffle_order"`
		Repeat       player.RepeatMode    `json:"repeat"`
		Shuffle      bool                 `json:"shuffle"`
		Playing      bool                 `json:"playing"`
		Volume       float64              `json:"volume"`
		Muted        bool                 `json:"muted"`
		Time         float64              `json:"time"`
		TimeText     string               `json:"time_text"`
		Duration     float64              `json:"duration"`
		DurationText string               `json:"duration_text,omitempty"`
		BufferedEnd  float64              `json:"buffered_end"`
		PlaybackRate float64              `json:"playback_rate"`
		Subtitle     *player.Subtitle     `json:"subtitle"`
		MediaKind    media.Kind           `json:"media_kind"`
		MediaError   *player.MediaError   `json:"media_error"`
		Fullscreen   bool                 `json:"fullscreen"`
		Vis          player.Visualization `json:"visualization"`
	}
	struc.Playlist = jsonEntries(state.Playlist)
	struc.CurrentIndex = state.CurrentIndex
	struc.ShuffleOrder = state.ShuffleOrder
	struc.Repeat = state.Repeat
	struc.Shuffle = state.Shuffle
	struc.Playing = state.Playing
	struc.Volume = state.Volume
	struc.Muted = state.Muted
	struc.Time = seconds(state.Time)
	struc.TimeText = util.FormatTime(state.Time)
	struc.Duration = seconds(state.Duration)
	if state.Duration != player.UnknownDuration {
		struc.DurationText = util.FormatTime(state.Duration)
	}
	struc.BufferedEnd = seconds(state.BufferedEnd)
	struc.PlaybackRate = state.PlaybackRate
	struc.Subtitle = state.Subtitle
	struc.MediaKind = state.MediaKind
	struc.MediaError = state.MediaError
	struc.Fullscreen = state.Fullscreen
	struc.Vis = state.Visualization
	return struc
}

func (api *API) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, jsonState(api.store.State()))
}

func (api *API) command(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Command string  `json:"command"`
		Arg     float64 `json:"arg"`
	}
	if err := decodeBody(r, &data); err != nil {
		WriteError(w, r, err)
		return
	}
	cmd, err := command.ParseCommand(data.Command)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := api.controller.Do(r.Context(), cmd, data.Arg); err != nil {
		WriteError(w, r, err)
		return
	}
	if cmd == command.ClearPlaylist {
		api.mutate.Lock()
		api.uploads.prune(api.store.State())
		api.mutate.Unlock()
	}
	w.Write([]byte("{}"))
}

func (api *API) setCurrent(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Index int `json:"index"`
	}
	if err := decodeBody(r, &data); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := api.store.SetCurrentIndex(data.Index); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) subtitleClear(w http.ResponseWriter, r *http.Request) {
	if err := api.controller.Do(r.Context(), command.ClearSubtitle, 0); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) events(w http.ResponseWriter, r *http.Request) {
	listener := api.store.Listen(r.Context())
	es, err := eventsource.Begin(w, r)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	es.EventJSON("state", jsonState(api.store.State()))

	for event := range listener {
		switch t := event.(type) {
		case player.PlaylistEvent:
			state := api.store.State()
			es.EventJSON("playlist", map[string]interface{}{
				"playlist":      jsonEntries(state.Playlist),
				"current_index": state.CurrentIndex,
				"shuffle_order": state.ShuffleOrder,
			})
		case player.CurrentEvent:
			es.EventJSON("current", map[string]interface{}{"index": t.Index})
		case player.PlayStateEvent:
			es.EventJSON("playstate", map[string]interface{}{"playing": t.Playing})
		case player.VolumeEvent:
			es.EventJSON("volume", map[string]interface{}{"volume": t.Volume, "muted": t.Muted})
		case player.TimeEvent:
			es.EventJSON("time", map[string]interface{}{"time": seconds(t.Time), "time_text": util.FormatTime(t.Time)})
		case player.DurationEvent:
			es.EventJSON("duration", map[string]interface{}{"duration": seconds(t.Duration)})
		case player.BufferedEvent:
			es.EventJSON("buffered", map[string]interface{}{"buffered_end": seconds(t.End)})
		case player.RateEvent:
			es.EventJSON("rate", map[string]interface{}{"playback_rate": t.Rate})
		case player.ModeEvent:
			es.EventJSON("mode", map[string]interface{}{"repeat": t.Repeat, "shuffle": t.Shuffle})
		case player.SubtitleEvent:
			es.EventJSON("subtitle", map[string]interface{}{"subtitle": api.store.State().Subtitle})
		case player.MediaKindEvent:
			es.EventJSON("mediakind", map[string]interface{}{"media_kind": t.Kind})
		case player.ErrorEvent:
			es.EventJSON("error", map[string]interface{}{"media_error": t.Error})
		case player.DisplayEvent:
			state := api.store.State()
			es.EventJSON("display", map[string]interface{}{
				"fullscreen":    state.Fullscreen,
				"visualization": state.Visualization,
			})
		default:
			log.Debugf("Unmapped player event %#v", event)
		}
	}
}
