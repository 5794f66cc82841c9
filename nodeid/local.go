package nodeid

import (
	"context"
	"net"
	"sync"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/xerrors"
)

// 测试时替换
var (
	interfaces     = net.Interfaces
	interfaceAddrs = net.InterfaceAddrs
)

// staticProvider 直接返回配置的节点号
type staticProvider struct {
	id uint64
}

func (p *staticProvider) Acquire(context.Context) (uint64, error)    { return p.id, nil }
func (p *staticProvider) KeepAlive(ctx context.Context) <-chan error { return idle(ctx) }
func (p *staticProvider) Release(context.Context) error              { return nil }

// localProvider 从本机网卡推导节点号，结果在首次成功后缓存
type localProvider struct {
	name    string
	resolve func() (uint64, error)
	logger  clog.Logger

	mu       sync.Mutex
	id       uint64
	resolved bool
}

func (p *localProvider) Acquire(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved {
		return p.id, nil
	}

	id, err := p.resolve()
	if err != nil {
		p.logger.Error("resolve node id failed", clog.Error(err))
		return 0, err
	}
	p.id, p.resolved = id, true
	p.logger.Info("node id resolved", clog.NodeID(id))
	return id, nil
}

func (p *localProvider) KeepAlive(ctx context.Context) <-chan error { return idle(ctx) }
func (p *localProvider) Release(context.Context) error              { return nil }

// macNodeID 第一个非 loopback 网卡的 48 位硬件地址
func macNodeID() (uint64, error) {
	ifaces, err := interfaces()
	if err != nil {
		return 0, xerrors.Wrap(err, "list interfaces")
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) != 6 {
			continue
		}
		var id uint64
		for _, b := range iface.HardwareAddr {
			id = id<<8 | uint64(b)
		}
		if id != 0 {
			return id, nil
		}
	}
	return 0, xerrors.WithCode(ErrNoAddress, "no_hardware_address")
}

// ipNodeID 第一个非 loopback IPv4 地址的低 16 位
func ipNodeID() (uint64, error) {
	ip, err := localIPv4()
	if err != nil {
		return 0, err
	}
	return uint64(ip[2])<<8 | uint64(ip[3]), nil
}

func localIPv4() (net.IP, error) {
	addrs, err := interfaceAddrs()
	if err != nil {
		return nil, xerrors.Wrap(err, "list interface addrs")
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ip := ipnet.IP.To4(); ip != nil {
				return ip, nil
			}
		}
	}
	return nil, xerrors.WithCode(ErrNoAddress, "no_ipv4_address")
}
