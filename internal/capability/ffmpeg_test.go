package capability

import "testing"

func TestFFmpegBin_DefaultsToFfmpeg(t *testing.T) {
	f := &FFmpeg{}
	if f.bin() != "ffmpeg" {
		t.Errorf("bin() = %s; want ffmpeg", f.bin())
	}
	f.Bin = "/custom/ffmpeg"
	if f.bin() != "/custom/ffmpeg" {
		t.Errorf("bin() = %s; want custom path", f.bin())
	}
}

func TestLangCodes_KnownMapping(t *testing.T) {
	cases := map[string]string{
		"ru": "rus",
		"en": "eng",
		"ja": "jpn",
	}
	for in, want := range cases {
		if got := langCodes[in]; got != want {
			t.Errorf("langCodes[%q] = %q; want %q", in, got, want)
		}
	}
}

func TestLangCodes_UnknownHasNoMapping(t *testing.T) {
	if _, ok := langCodes["xx"]; ok {
		t.Fatal("expected no mapping for unknown language code")
	}
}
