package reader

// NetReading holds the cumulative byte counters of one interface.
type NetReading struct {
	Name string
	RX   uint64
	TX   uint64
}

// ReadNetwork reads rx_bytes and tx_bytes of iface below sysRoot.
func (r *Reader) ReadNetwork(sysRoot, iface string) (NetReading, error) {
	rx, err := r.ReadUint(NetStatPath(sysRoot, iface, "rx_bytes"))
	if err != nil {
		return NetReading{}, err
	}

	tx, err := r.ReadUint(NetStatPath(sysRoot, iface, "tx_bytes"))
	if err != nil {
		return NetReading{}, err
	}

	return NetReading{Name: iface, RX: rx, TX: tx}, nil
}
