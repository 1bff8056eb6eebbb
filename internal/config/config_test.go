package config

import (
	"errors"
	"strconv"
	"testing"
)

func TestParseModelPathAndDefaults(t *testing.T) {
	cfg, err := Parse([]string{"scene.glb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ModelPath != "scene.glb" {
		t.Errorf("ModelPath = %q, want %q", cfg.ModelPath, "scene.glb")
	}
	if cfg.TargetFPS != 60 {
		t.Errorf("default TargetFPS = %d, want 60", cfg.TargetFPS)
	}
	if cfg.BGRed != 30 || cfg.BGGreen != 30 || cfg.BGBlue != 40 {
		t.Errorf("default background = %d,%d,%d, want 30,30,40", cfg.BGRed, cfg.BGGreen, cfg.BGBlue)
	}
	if cfg.ShadowMapSize != 512 {
		t.Errorf("default ShadowMapSize = %d, want 512", cfg.ShadowMapSize)
	}
}

func TestParseFlagsOverrideDefaults(t *testing.T) {
	cfg, err := Parse([]string{
		"--texture", "diffuse.png",
		"--fps", "30",
		"--bg", "10,20,30",
		"--shadow-map-size", "1024",
		"--verbose",
		"scene.obj",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TexturePath != "diffuse.png" {
		t.Errorf("TexturePath = %q, want %q", cfg.TexturePath, "diffuse.png")
	}
	if cfg.TargetFPS != 30 {
		t.Errorf("TargetFPS = %d, want 30", cfg.TargetFPS)
	}
	if cfg.BGRed != 10 || cfg.BGGreen != 20 || cfg.BGBlue != 30 {
		t.Errorf("background = %d,%d,%d, want 10,20,30", cfg.BGRed, cfg.BGGreen, cfg.BGBlue)
	}
	if cfg.ShadowMapSize != 1024 {
		t.Errorf("ShadowMapSize = %d, want 1024", cfg.ShadowMapSize)
	}
	if !cfg.Verbose {
		t.Error("expected Verbose to be true")
	}
	if cfg.ModelPath != "scene.obj" {
		t.Errorf("ModelPath = %q, want %q", cfg.ModelPath, "scene.obj")
	}
}

func TestParseMalformedBackgroundKeepsDefault(t *testing.T) {
	cfg, err := Parse([]string{"--bg", "not-a-color", "scene.obj"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BGRed != 30 || cfg.BGGreen != 30 || cfg.BGBlue != 40 {
		t.Errorf("malformed --bg should leave defaults in place, got %d,%d,%d", cfg.BGRed, cfg.BGGreen, cfg.BGBlue)
	}
}

func TestParseHelpFlagReturnsErrHelp(t *testing.T) {
	_, err := Parse([]string{"--help"})
	if !errors.Is(err, ErrHelp) {
		t.Errorf("expected ErrHelp, got %v", err)
	}
}

func TestParseMissingModelPathReturnsError(t *testing.T) {
	_, err := Parse([]string{})
	if err == nil {
		t.Fatal("expected an error when no model path is given")
	}
}

func TestParseTextureRotateValidValues(t *testing.T) {
	for _, degrees := range []int{0, 90, 180, 270} {
		cfg, err := Parse([]string{"--texture-rotate", strconv.Itoa(degrees), "scene.obj"})
		if err != nil {
			t.Fatalf("--texture-rotate %d: unexpected error: %v", degrees, err)
		}
		if cfg.TextureRotate != degrees {
			t.Errorf("TextureRotate = %d, want %d", cfg.TextureRotate, degrees)
		}
	}
}

func TestParseTextureRotateInvalidValueErrors(t *testing.T) {
	_, err := Parse([]string{"--texture-rotate", "45", "scene.obj"})
	if err == nil {
		t.Fatal("expected an error for a non-multiple-of-90 --texture-rotate value")
	}
}

func TestParseFlipTextureFlags(t *testing.T) {
	cfg, err := Parse([]string{"--flip-texture-h", "--flip-texture-v", "scene.obj"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.FlipTextureH || !cfg.FlipTextureV {
		t.Errorf("expected both flip flags set, got H=%v V=%v", cfg.FlipTextureH, cfg.FlipTextureV)
	}
}
