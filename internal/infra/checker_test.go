package infra

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refinedigital/n8n-local/pkg/cmdexec"
)

type fakeRuntime struct {
	pingErr    error
	running    map[string]bool
	networks   map[string]bool
	pingCalls  int
	checkCalls int
}

func (f *fakeRuntime) Ping(context.Context) error {
	f.pingCalls++
	return f.pingErr
}

func (f *fakeRuntime) IsContainerRunning(_ context.Context, name string) (bool, error) {
	f.checkCalls++
	return f.running[name], nil
}

func (f *fakeRuntime) NetworkExists(_ context.Context, name string) (bool, error) {
	f.checkCalls++
	return f.networks[name], nil
}

type fakeRunner struct {
	outputs map[string]string
	err     error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, cmd cmdexec.Command) error {
	f.calls = append(f.calls, cmd.String())
	return f.err
}

func (f *fakeRunner) Output(_ context.Context, cmd cmdexec.Command) (string, error) {
	f.calls = append(f.calls, cmd.String())
	if f.err != nil {
		return "", f.err
	}
	return f.outputs[cmd.String()], nil
}

func healthyFakes() (*fakeRuntime, *fakeRunner) {
	rt := &fakeRuntime{
		running:  map[string]bool{"nginx-proxy": true},
		networks: map[string]bool{"proxy": true},
	}
	rn := &fakeRunner{outputs: map[string]string{
		"docker compose version --short": "v2.24.6",
	}}
	return rt, rn
}

func TestCheck_AllPreconditionsPass(t *testing.T) {
	rt, rn := healthyFakes()
	c := &Checker{Runtime: rt, Runner: rn}

	p := &Profile{Name: "dev-fi-01", ProxyContainer: "nginx-proxy", SharedNetwork: "proxy"}
	require.NoError(t, c.Check(context.Background(), p))
}

func TestCheck_FailsWhenDaemonUnreachable(t *testing.T) {
	rt, rn := healthyFakes()
	rt.pingErr = fmt.Errorf("no socket")
	c := &Checker{Runtime: rt, Runner: rn}

	p := &Profile{Name: "dev-fi-01", ProxyContainer: "nginx-proxy", SharedNetwork: "proxy"}
	err := c.Check(context.Background(), p)
	require.Error(t, err)
	// fails closed: no container or network checks after the ping failed
	assert.Zero(t, rt.checkCalls)
}

func TestCheck_FailsWhenRequiredContainerStopped(t *testing.T) {
	rt, rn := healthyFakes()
	rt.running["nginx-proxy"] = false
	c := &Checker{Runtime: rt, Runner: rn}

	p := &Profile{Name: "dev-fi-01", ProxyContainer: "nginx-proxy", SharedNetwork: "proxy"}
	err := c.Check(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nginx-proxy")
	assert.Contains(t, err.Error(), "docker start")
}

func TestCheck_FailsWhenRequiredNetworkMissing(t *testing.T) {
	rt, rn := healthyFakes()
	rt.networks["proxy"] = false
	c := &Checker{Runtime: rt, Runner: rn}

	p := &Profile{Name: "dev-fi-01", ProxyContainer: "nginx-proxy", SharedNetwork: "proxy"}
	err := c.Check(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docker network create")
}

func TestCheck_FailsOnOldComposeVersion(t *testing.T) {
	rt, rn := healthyFakes()
	rn.outputs["docker compose version --short"] = "1.29.2"
	c := &Checker{Runtime: rt, Runner: rn}

	p := &Profile{Name: "dev-fi-01", ProxyContainer: "nginx-proxy", SharedNetwork: "proxy"}
	err := c.Check(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too old")
}
