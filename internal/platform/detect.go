package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "speechtxt"

type Runtime struct {
	OS        string
	Arch      string
	GoVersion string
}

func CurrentRuntime() Runtime {
	return Runtime{
		OS:        runtime.GOOS,
		Arch:      NormalizeArch(runtime.GOARCH),
		GoVersion: runtime.Version(),
	}
}

func (r Runtime) Target() string {
	return fmt.Sprintf("%s_%s", r.OS, r.Arch)
}

func NormalizeArch(arch string) string {
	switch arch {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	default:
		return arch
	}
}

// Env carries the environment lookups needed to place data and config
// directories, so the resolution stays testable without touching the process.
type Env struct {
	GOOS          string
	Home          string
	XDGDataHome   string
	XDGConfigHome string
	AppData       string
}

func CurrentEnv() (Env, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Env{}, fmt.Errorf("resolve user home: %w", err)
	}

	return Env{
		GOOS:          runtime.GOOS,
		Home:          homeDir,
		XDGDataHome:   os.Getenv("XDG_DATA_HOME"),
		XDGConfigHome: os.Getenv("XDG_CONFIG_HOME"),
		AppData:       os.Getenv("APPDATA"),
	}, nil
}

func DefaultModelDirFor(env Env) (string, error) {
	dataDir, err := dataDirFor(env)
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "models"), nil
}

func DefaultConfigFileFor(env Env) (string, error) {
	if env.Home == "" {
		return "", errors.New("home directory is empty")
	}

	switch env.GOOS {
	case "linux":
		if env.XDGConfigHome != "" {
			return filepath.Join(env.XDGConfigHome, appName, "config.yaml"), nil
		}
		return filepath.Join(env.Home, ".config", appName, "config.yaml"), nil
	case "darwin":
		return filepath.Join(env.Home, "Library", "Application Support", appName, "config.yaml"), nil
	case "windows":
		return filepath.Join(windowsAppData(env), appName, "config.yaml"), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", env.GOOS)
	}
}

func ResolveModelDir(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	env, err := CurrentEnv()
	if err != nil {
		return "", err
	}
	return DefaultModelDirFor(env)
}

func ResolveConfigFile(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	env, err := CurrentEnv()
	if err != nil {
		return "", err
	}
	return DefaultConfigFileFor(env)
}

func dataDirFor(env Env) (string, error) {
	if env.Home == "" {
		return "", errors.New("home directory is empty")
	}

	switch env.GOOS {
	case "linux":
		if env.XDGDataHome != "" {
			return filepath.Join(env.XDGDataHome, appName), nil
		}
		return filepath.Join(env.Home, ".local", "share", appName), nil
	case "darwin":
		return filepath.Join(env.Home, "Library", "Application Support", appName), nil
	case "windows":
		return filepath.Join(windowsAppData(env), appName), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", env.GOOS)
	}
}

func windowsAppData(env Env) string {
	if env.AppData != "" {
		return env.AppData
	}
	return filepath.Join(env.Home, "AppData", "Roaming")
}
