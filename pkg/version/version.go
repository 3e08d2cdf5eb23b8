package version

// Version is the version of cool-little-battery. It is set at build time
// with -ldflags "-X github.com/wowitsjack/cool-little-battery/pkg/version.Version=...".
var Version = "dev"
