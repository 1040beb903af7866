package data

import (
	"mime"
	"path/filepath"
	"strings"
)

const (
	ContentTypeDirectory         = "text/directory"
	ContentTypeTextPlain         = "text/plain"
	ContentTypeTextMarkdown      = "text/markdown"
	ContentTypeTextGo            = "text/x-go"
	ContentTypeTextYAML          = "text/yaml"
	ContentTypeTextHTML          = "text/html"
	ContentTypeTextCSS           = "text/css"
	ContentTypeTextJavaScript    = "text/javascript"
	ContentTypeTextCSV           = "text/csv"
	ContentTypeImageJPEG         = "image/jpeg"
	ContentTypeImagePNG          = "image/png"
	ContentTypeImageGIF          = "image/gif"
	ContentTypeImageWebP         = "image/webp"
	ContentTypeImageSVGXML       = "image/svg+xml"
	ContentTypeAudioMpeg         = "audio/mpeg"
	ContentTypeAudioWAV          = "audio/wav"
	ContentTypeAudioOGG          = "audio/ogg"
	ContentTypeAudioWebM         = "audio/webm"
	ContentTypeVideoMP4          = "video/mp4"
	ContentTypeVideoWebM         = "video/webm"
	ContentTypeVideoQuickTime    = "video/quicktime"
	ContentTypeApplicationPDF    = "application/pdf"
	ContentTypeApplicationZip    = "application/zip"
	ContentTypeApplicationGZip   = "application/gzip"
	ContentTypeApplicationXTar   = "application/x-tar"
	ContentTypeApplicationJson   = "application/json"
	ContentTypeApplicationXML    = "application/xml"
	ContentTypeApplicationStream = "application/octet-stream"
	ContentTypeApplicationCustom = "application/x-custom"
)

// ExtensionToMIME maps file extensions to MIME types
var ExtensionToMIME = map[string]string{
	".txt":  ContentTypeTextPlain,
	".html": ContentTypeTextHTML,
	".css":  ContentTypeTextCSS,
	".js":   ContentTypeTextJavaScript,
	".csv":  ContentTypeTextCSV,
	".jpg":  ContentTypeImageJPEG,
	".jpeg": ContentTypeImageJPEG,
	".png":  ContentTypeImagePNG,
	".gif":  ContentTypeImageGIF,
	".webp": ContentTypeImageWebP,
	".svg":  ContentTypeImageSVGXML,
	".mp3":  ContentTypeAudioMpeg,
	".wav":  ContentTypeAudioWAV,
	".ogg":  ContentTypeAudioOGG,
	".mp4":  ContentTypeVideoMP4,
	".webm": ContentTypeVideoWebM,
	".pdf":  ContentTypeApplicationPDF,
	".zip":  ContentTypeApplicationZip,
	".gz":   ContentTypeApplicationGZip,
	".tar":  ContentTypeApplicationXTar,
	".json": ContentTypeApplicationJson,
	".xml":  ContentTypeApplicationXML,
	".md":   ContentTypeTextMarkdown,
	".go":   ContentTypeTextGo,
	".yaml": ContentTypeTextYAML,
	".yml":  ContentTypeTextYAML,
}

// ContentTypeFromName guesses the media type of a file from its name.
// Unknown extensions fall back to the mime package and finally to
// application/octet-stream.
func ContentTypeFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ContentTypeApplicationStream
	}

	if contentType, exists := ExtensionToMIME[ext]; exists {
		return contentType
	}

	if contentType := mime.TypeByExtension(ext); contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			return mediaType
		}
	}

	return ContentTypeApplicationStream
}

// IsTextContentType returns true for media types that are safe to treat as text.
func IsTextContentType(contentType string) bool {
	switch {
	case strings.HasPrefix(contentType, "text/"):
		return true
	case contentType == ContentTypeApplicationJson, contentType == ContentTypeApplicationXML:
		return true
	}
	return false
}
