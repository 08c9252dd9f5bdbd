package cufile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Policy decides whether the direct-storage path is used and whether its
// absence is fatal.
type Policy int

const (
	// PolicyOff disables the direct path entirely.
	PolicyOff Policy = iota
	// PolicyGDS uses the direct path when available and falls back silently
	// otherwise. The compiled-in default.
	PolicyGDS
	// PolicyAlways requires the direct path; construction failures are
	// fatal to the caller.
	PolicyAlways
)

const (
	policyEnvVar      = "GDSIO_CUFILE_POLICY"
	configPathEnvVar  = "CUFILE_ENV_PATH_JSON"
	defaultConfigPath = "/etc/cufile.json"
	compatModeTag     = `"allow_compat_mode"`
)

func (p Policy) Enabled() bool  { return p != PolicyOff }
func (p Policy) Required() bool { return p == PolicyAlways }

func (p Policy) String() string {
	switch p {
	case PolicyOff:
		return "OFF"
	case PolicyGDS:
		return "GDS"
	case PolicyAlways:
		return "ALWAYS"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func policyFromEnv() Policy {
	val, ok := os.LookupEnv(policyEnvVar)
	if !ok {
		return PolicyGDS
	}
	switch val {
	case "OFF":
		return PolicyOff
	case "GDS":
		return PolicyGDS
	case "ALWAYS":
		return PolicyAlways
	}
	log.Warn().Msgf("unknown %s value %q, disabling direct storage", policyEnvVar, val)
	return PolicyOff
}

// Config is the resolved policy plus the path of the patched driver config
// the driver has been pointed at. Immutable after resolution.
type Config struct {
	Policy     Policy
	ConfigPath string
}

var (
	configOnce sync.Once
	config     *Config
	configErr  error
)

// ConfigInstance resolves the policy and patches the driver config exactly
// once per process. An unreadable config file is a fatal error, not a soft
// fallback: it means the driver installation is broken.
func ConfigInstance() (*Config, error) {
	configOnce.Do(func() {
		config, configErr = resolveConfig()
	})
	return config, configErr
}

func resolveConfig() (_ *Config, err error) {
	cfg := &Config{Policy: policyFromEnv()}
	if !cfg.Policy.Enabled() {
		return cfg, nil
	}

	srcPath := defaultConfigPath
	if env, ok := os.LookupEnv(configPathEnvVar); ok {
		srcPath = env
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	defer src.Close()

	tmpDir, err := os.MkdirTemp("", "gdsio-cufile-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(tmpDir)
		}
	}()
	dstPath := filepath.Join(tmpDir, "cufile.json")
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	defer dst.Close()

	// The driver tolerating host-memory fallback only makes sense when this
	// layer will not fall back itself.
	if err := patchCompatMode(src, dst, cfg.Policy.Required()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	// Point the driver at the patched copy, without clobbering a
	// caller-provided override.
	if _, ok := os.LookupEnv(configPathEnvVar); !ok {
		if err := os.Setenv(configPathEnvVar, dstPath); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}
	cfg.ConfigPath = dstPath
	return cfg, nil
}

// patchCompatMode rewrites the driver config line by line, replacing the
// compat-mode value and leaving every other line untouched. Indentation of
// the matched line is preserved.
func patchCompatMode(src io.Reader, dst io.Writer, compat bool) error {
	w := bufio.NewWriter(dst)
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, compatModeTag) {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			line = fmt.Sprintf("%s%s: %t,", indent, compatModeTag, compat)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return w.Flush()
}
