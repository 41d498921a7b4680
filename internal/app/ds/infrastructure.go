package ds

// Вложенные структуры инфраструктуры. Хранятся в jsonb колонках заявки,
// json-теги совпадают с форматом формы (camelCase).

// Ворклоад - гипервизорная среда внутри ЦОД
type DatacenterWorkload struct {
	ID             string `json:"id,omitempty"`
	Hypervisor     string `json:"hypervisor" binding:"omitempty,oneof=vmware-vsphere nutanix-ahv microsoft-hyperv microsoft-scvmm openstack kvm oracle-vm vcloud-director ucs-manager hpe-hvm xen-server macstadium"`
	Hosts          int    `json:"hosts" binding:"gte=0"`
	SocketsPerHost int    `json:"socketsPerHost" binding:"gte=0"`
}

// ЦОД может содержать несколько ворклоадов
type Datacenter struct {
	ID        string               `json:"id,omitempty"`
	Name      string               `json:"name"`
	Workloads []DatacenterWorkload `json:"workloads" binding:"omitempty,dive"`
}

// Запись по публичному облаку: один провайдер - одно количество VM
type PublicCloudEntry struct {
	Provider string `json:"provider" binding:"required,oneof=aws azure azure-stack google-cloud alibaba-cloud ibm-cloud oracle-cloud digitalocean huawei-cloud upcloud open-telekom"`
	VMs      int    `json:"vms" binding:"gte=0"`
}

type KubernetesCluster struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Distribution string `json:"distribution" binding:"omitempty,oneof=eks aks gke openshift rancher tanzu mks vanilla k3s rke dke other"`
	Location     string `json:"location" binding:"omitempty,oneof=on-prem aws azure gcp hybrid other"`
	Workers      int    `json:"workers" binding:"gte=0"`
}

// Выбранные интеграции
type Integrations struct {
	Automation        []string `json:"automation,omitempty"`
	ITSM              string   `json:"itsm,omitempty"`
	ITSMDetails       string   `json:"itsmDetails,omitempty"`
	LoadBalancer      []string `json:"loadBalancer,omitempty"`
	DNSIPAM           []string `json:"dnsIpam,omitempty"`
	OtherIntegrations string   `json:"otherIntegrations,omitempty"`
}

// Приложенный файл (хранится в MinIO)
type Attachment struct {
	FileName   string `json:"fileName"`
	ObjectName string `json:"objectName"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploadedAt"`
	UploadedBy string `json:"uploadedBy,omitempty"`
}
