// Package reward содержит бизнес-логику заработка на просмотре рекламы:
// выбор способа воспроизведения, машину состояний просмотра и
// идемпотентное начисление награды.
package reward

import (
	"errors"
	"regexp"
)

// Способ воспроизведения. Решение принимается один раз при создании
// просмотра и дальше не пересматривается.
const (
	SourceEmbeddedFrame = "embedded_frame"
	SourceDirectFile    = "direct_file"
)

// ErrNoAdSource возвращается при пустом адресе ролика.
var ErrNoAdSource = errors.New("no ad source configured")

// AdSource описывает, как воспроизводить рекламный ролик.
type AdSource struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

var (
	directFileRe = regexp.MustCompile(`(?i)\.(mp4|webm|ogg)(\?.*)?$`)
	youtubeRe    = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]{11})`)
)

// ResolveSource выбирает способ воспроизведения по адресу ролика.
// Прямые ссылки на видеофайлы проигрываются нативно, адреса видеохостингов
// приводятся к встраиваемой форме с автозапуском, всё остальное
// встраивается как есть.
func ResolveSource(rawURL string) (AdSource, error) {
	if rawURL == "" {
		return AdSource{}, ErrNoAdSource
	}
	if directFileRe.MatchString(rawURL) {
		return AdSource{Kind: SourceDirectFile, URL: rawURL}, nil
	}
	if m := youtubeRe.FindStringSubmatch(rawURL); m != nil {
		embed := "https://www.youtube.com/embed/" + m[1] +
			"?autoplay=1&mute=1&controls=0&rel=0"
		return AdSource{Kind: SourceEmbeddedFrame, URL: embed}, nil
	}
	return AdSource{Kind: SourceEmbeddedFrame, URL: rawURL}, nil
}
