package runpod

import "fmt"

// proxyDomain is the provider's HTTP proxy for pods without a public IP.
const proxyDomain = "proxy.runpod.net"

// EndpointURL resolves the externally reachable address for a pod's service
// port. When publicIP is requested and the provider reports a matching
// public port mapping, the direct address is returned; otherwise the
// provider-proxy address derived from pod ID and port is used.
func EndpointURL(pod *Pod, port int, publicIP bool) string {
	if publicIP && pod != nil {
		for _, m := range pod.PortMappings {
			if m.InternalPort == port && m.ExternalIP != "" && m.ExternalPort != 0 {
				return fmt.Sprintf("http://%s:%d", m.ExternalIP, m.ExternalPort)
			}
		}
	}

	id := ""
	if pod != nil {
		id = pod.ID
	}
	return fmt.Sprintf("https://%s-%d.%s", id, port, proxyDomain)
}
