package apic

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// JumpHost routes controller connections through an SSH server. Used when
// the controller's management network is only reachable from a bastion.
type JumpHost struct {
	Addr           string // host or host:port; port 22 when omitted
	User           string
	Password       string
	KnownHostsFile string // host keys are not verified when empty
}

func (j *JumpHost) address() string {
	if _, _, err := net.SplitHostPort(j.Addr); err == nil {
		return j.Addr
	}
	return net.JoinHostPort(j.Addr, "22")
}

// dial opens the SSH connection to the jump host.
func (j *JumpHost) dial(timeout time.Duration) (*ssh.Client, error) {
	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if j.KnownHostsFile != "" {
		cb, err := knownhosts.New(j.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("loading known hosts %s: %w", j.KnownHostsFile, err)
		}
		hostKeyCallback = cb
	}

	config := &ssh.ClientConfig{
		User: j.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(j.Password),
		},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	client, err := ssh.Dial("tcp", j.address(), config)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", j.Addr, err)
	}
	return client, nil
}
