package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/secondbrainhq/secondbrain/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Configer config", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).NotTo(BeNil())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Version).To(Equal(defaults.Version))
			Expect(cfg.Server.Listen).To(Equal(defaults.Server.Listen))
			Expect(cfg.Storage.Driver).To(Equal(defaults.Storage.Driver))
			Expect(cfg.VectorStore.Provider).To(Equal(defaults.VectorStore.Provider))
			Expect(cfg.Embedding.Provider).To(Equal(defaults.Embedding.Provider))
			Expect(cfg.Embedding.Model).To(Equal(defaults.Embedding.Model))
			Expect(cfg.Embedding.Dimensions).To(Equal(defaults.Embedding.Dimensions))
			Expect(cfg.Auth.TokenIssuer).To(Equal(defaults.Auth.TokenIssuer))
			Expect(cfg.Auth.TokenTTLHours).To(Equal(defaults.Auth.TokenTTLHours))
			Expect(cfg.Frontend.Origin).To(Equal(defaults.Frontend.Origin))
		})

		It("loads a valid config file", func() {
			data := `version = 0

[server]
listen = ":9090"

[storage]
driver = "postgres"
postgres_dsn = "postgres://localhost/secondbrain"

[embedding]
dimensions = 384
`
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Listen).To(Equal(":9090"))
			Expect(cfg.Storage.Driver).To(Equal("postgres"))
			Expect(cfg.Storage.PostgresDSN).To(Equal("postgres://localhost/secondbrain"))
			Expect(cfg.Embedding.Dimensions).To(Equal(uint(384)))
		})

		It("fills unset fields with defaults", func() {
			data := `[server]
listen = ":9090"
`
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Listen).To(Equal(":9090"))
			Expect(cfg.Storage.Driver).To(Equal(config.NewDefaultConfig().Storage.Driver))
			Expect(cfg.Embedding.Model).To(Equal(config.NewDefaultConfig().Embedding.Model))
		})

		It("rejects unsupported config versions", func() {
			data := `version = 99`
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version")))
		})
	})

	Describe("SetConfigValue / GetConfigValue", func() {
		It("round-trips a string key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("frontend.origin", "https://brain.example.com")).To(Succeed())

			got, err := c.GetConfigValue("frontend.origin")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("https://brain.example.com"))
		})

		It("round-trips a numeric key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("auth.token_ttl_hours", "72")).To(Succeed())

			got, err := c.GetConfigValue("auth.token_ttl_hours")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("72"))
		})

		It("rejects unknown keys", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("nope.nope", "x")).To(MatchError(ContainSubstring("unknown config key")))
			_, err = c.GetConfigValue("nope.nope")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("rejects non-numeric values for numeric keys", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("embedding.dimensions", "many")).To(HaveOccurred())
		})
	})

	Describe("ValidConfigKeys", func() {
		It("covers every supported key", func() {
			for _, k := range config.ValidConfigKeys() {
				Expect(config.IsValidConfigKey(k)).To(BeTrue(), k)
			}
		})

		It("includes the auth and frontend keys", func() {
			Expect(config.ValidConfigKeys()).To(ContainElements(
				"auth.jwt_secret", "auth.token_issuer", "frontend.origin",
			))
		})
	})
})
