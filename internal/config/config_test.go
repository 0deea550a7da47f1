// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.
package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thediveo/ssrserve"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

func setenv(name, value string) {
	GinkgoHelper()
	old, ok := os.LookupEnv(name)
	Expect(os.Setenv(name, value)).To(Succeed())
	DeferCleanup(func() {
		if ok {
			_ = os.Setenv(name, old)
			return
		}
		_ = os.Unsetenv(name)
	})
}

var _ = Describe("configuration", func() {

	var root string

	BeforeEach(func() {
		// Start from an empty directory so that no stray ssrserve.yaml gets
		// picked up.
		root = GinkgoT().TempDir()
		setenv("SSRSERVE_ROOT", root)
	})

	It("defaults to development on port 3000", func() {
		cfg := Successful(Load(NewViper()))
		Expect(cfg.Mode).To(Equal(ssrserve.Development))
		Expect(cfg.Port).To(Equal(DefaultPort))
		Expect(cfg.Root).To(Equal(root))
		Expect(cfg.AssetsDir).To(Equal("assets"))
		Expect(cfg.LogLevel).To(Equal(slog.LevelInfo))
		Expect(cfg.LogFormat).To(Equal("text"))
	})

	DescribeTable("selects the mode from the environment",
		func(value string, expected ssrserve.Mode) {
			setenv(ssrserve.ModeEnvVar, value)
			Expect(Load(NewViper())).To(HaveField("Mode", expected))
		},
		Entry("production", "production", ssrserve.Production),
		Entry("capitalized", "Production", ssrserve.Development),
		Entry("development", "development", ssrserve.Development),
		Entry("empty", "", ssrserve.Development),
	)

	It("takes settings from prefixed environment variables", func() {
		setenv("SSRSERVE_PORT", "8080")
		setenv("SSRSERVE_BUILD_DIR", "out")
		setenv("SSRSERVE_LOG_LEVEL", "debug")
		cfg := Successful(Load(NewViper()))
		Expect(cfg.Port).To(Equal(8080))
		Expect(cfg.BuildDir).To(Equal("out"))
		Expect(cfg.LogLevel).To(Equal(slog.LevelDebug))
	})

	It("reads ssrserve.yaml from the root directory", func() {
		Expect(os.WriteFile(filepath.Join(root, "ssrserve.yaml"),
			[]byte("port: 4000\nmode: production\nlog-format: json\n"), 0o644)).To(Succeed())
		cfg := Successful(Load(NewViper()))
		Expect(cfg.Port).To(Equal(4000))
		Expect(cfg.Mode).To(Equal(ssrserve.Production))
		Expect(cfg.LogFormat).To(Equal("json"))
	})

	It("prefers the environment over the configuration file", func() {
		Expect(os.WriteFile(filepath.Join(root, "ssrserve.yaml"),
			[]byte("port: 4000\n"), 0o644)).To(Succeed())
		setenv("SSRSERVE_PORT", "5000")
		Expect(Load(NewViper())).To(HaveField("Port", 5000))
	})

	It("reads an explicitly specified configuration file", func() {
		file := filepath.Join(root, "custom.yaml")
		Expect(os.WriteFile(file, []byte("assets-dir: static\n"), 0o644)).To(Succeed())
		v := NewViper()
		v.Set(KeyConfig, file)
		Expect(Load(v)).To(HaveField("AssetsDir", "static"))
	})

	It("fails on a missing explicit configuration file", func() {
		v := NewViper()
		v.Set(KeyConfig, filepath.Join(root, "nope.yaml"))
		Expect(Load(v)).Error().To(MatchError(ContainSubstring("cannot read configuration")))
	})

	It("fails on a malformed configuration file", func() {
		Expect(os.WriteFile(filepath.Join(root, "ssrserve.yaml"),
			[]byte("port: [\n"), 0o644)).To(Succeed())
		Expect(Load(NewViper())).Error().To(HaveOccurred())
	})

	DescribeTable("rejects invalid settings",
		func(name, value, expectedKey string) {
			setenv(name, value)
			_, err := Load(NewViper())
			var cerr *Error
			Expect(err).To(BeAssignableToTypeOf(cerr))
			Expect(err).To(HaveField("Key", expectedKey))
		},
		Entry("port too low", "SSRSERVE_PORT", "0", KeyPort),
		Entry("port too high", "SSRSERVE_PORT", "65536", KeyPort),
		Entry("log format", "SSRSERVE_LOG_FORMAT", "xml", KeyLogFormat),
		Entry("log level", "SSRSERVE_LOG_LEVEL", "chatty", KeyLogLevel),
	)

	DescribeTable("parses log levels",
		func(s string, expected slog.Level) {
			Expect(ParseLogLevel(s)).To(Equal(expected))
		},
		Entry(nil, "debug", slog.LevelDebug),
		Entry(nil, "", slog.LevelInfo),
		Entry(nil, " INFO ", slog.LevelInfo),
		Entry(nil, "warning", slog.LevelWarn),
		Entry(nil, "Error", slog.LevelError),
	)

	It("resolves directories relative to the root", func() {
		cfg := &Config{Root: "/srv/app", BuildDir: "dist", SourceDir: "src"}
		Expect(cfg.ClientDir()).To(Equal("/srv/app/dist/client"))
		Expect(cfg.ServerDir()).To(Equal("/srv/app/dist/server"))
		Expect(cfg.SourceBundleDir()).To(Equal("/srv/app/src"))

		cfg.BuildDir = "/var/build"
		Expect(cfg.ClientDir()).To(Equal("/var/build/client"))
	})

	It("creates loggers in the configured format", func() {
		var buff bytes.Buffer
		cfg := &Config{LogFormat: "json", LogLevel: slog.LevelWarn}
		log := cfg.NewLogger(&buff)
		log.Info("hidden")
		log.Warn("shown", slog.Int("port", 3000))
		var entry map[string]any
		Expect(json.Unmarshal(buff.Bytes(), &entry)).To(Succeed())
		Expect(entry).To(HaveKeyWithValue("msg", "shown"))
		Expect(entry).To(HaveKeyWithValue("port", BeNumerically("==", 3000)))

		buff.Reset()
		cfg.LogFormat = "text"
		cfg.NewLogger(&buff).Warn("shown")
		Expect(buff.String()).To(ContainSubstring("msg=shown"))
	})

})
