// Package services maps well-known port numbers to probable service
// names. The table is static and best-effort; it never claims a service
// is actually running, only what usually lives on a port.
package services

// wellKnown maps port numbers to service names.
var wellKnown = map[int]string{
	20:    "ftp-data",
	21:    "ftp",
	22:    "ssh",
	23:    "telnet",
	25:    "smtp",
	53:    "dns",
	67:    "dhcp-server",
	68:    "dhcp-client",
	69:    "tftp",
	80:    "http",
	88:    "kerberos",
	110:   "pop3",
	111:   "rpcbind",
	119:   "nntp",
	123:   "ntp",
	135:   "msrpc",
	137:   "netbios-ns",
	138:   "netbios-dgm",
	139:   "netbios-ssn",
	143:   "imap",
	161:   "snmp",
	162:   "snmptrap",
	179:   "bgp",
	194:   "irc",
	389:   "ldap",
	443:   "https",
	445:   "microsoft-ds",
	464:   "kpasswd",
	465:   "smtps",
	500:   "isakmp",
	513:   "rlogin",
	514:   "syslog",
	515:   "printer",
	520:   "rip",
	521:   "ripng",
	523:   "ibm-db2",
	543:   "klogin",
	544:   "kshell",
	548:   "afp",
	554:   "rtsp",
	587:   "submission",
	631:   "ipp",
	636:   "ldaps",
	873:   "rsync",
	902:   "vmware-auth",
	993:   "imaps",
	995:   "pop3s",
	1080:  "socks",
	1194:  "openvpn",
	1433:  "mssql",
	1434:  "mssql-m",
	1521:  "oracle",
	1701:  "l2tp",
	1723:  "pptp",
	1812:  "radius",
	1813:  "radius-acct",
	1883:  "mqtt",
	2049:  "nfs",
	2082:  "cpanel",
	2083:  "cpanel-ssl",
	2086:  "whm",
	2087:  "whm-ssl",
	2181:  "zookeeper",
	2375:  "docker",
	2376:  "docker-ssl",
	3000:  "grafana",
	3128:  "squid",
	3268:  "globalcat",
	3269:  "globalcat-ssl",
	3306:  "mysql",
	3389:  "rdp",
	3690:  "svn",
	4369:  "epmd",
	4443:  "pharos",
	5000:  "upnp",
	5060:  "sip",
	5061:  "sips",
	5222:  "xmpp-client",
	5269:  "xmpp-server",
	5432:  "postgresql",
	5672:  "amqp",
	5900:  "vnc",
	5984:  "couchdb",
	6379:  "redis",
	6443:  "kubernetes-api",
	6666:  "irc",
	6667:  "irc",
	7001:  "weblogic",
	7077:  "spark-master",
	8000:  "http-alt",
	8008:  "http-alt",
	8080:  "http-proxy",
	8081:  "http-alt",
	8082:  "http-alt",
	8083:  "http-alt",
	8443:  "https-alt",
	8888:  "http-alt",
	9000:  "cslistener",
	9042:  "cassandra",
	9090:  "prometheus",
	9092:  "kafka",
	9200:  "elasticsearch",
	9300:  "elasticsearch-cluster",
	9418:  "git",
	10000: "webmin",
	11211: "memcached",
	15672: "rabbitmq-mgmt",
	27017: "mongodb",
	27018: "mongodb",
	27019: "mongodb",
	28017: "mongodb-web",
	50000: "db2",
	50070: "hdfs-namenode",
	50075: "hdfs-datanode",
}

// Lookup returns the probable service name for a port and whether the
// port is in the well-known table.
func Lookup(port int) (string, bool) {
	name, ok := wellKnown[port]
	return name, ok
}

// Name returns the probable service name for a port, or "unknown" if
// the port is not recognized.
func Name(port int) string {
	if name, ok := wellKnown[port]; ok {
		return name
	}
	return "unknown"
}
