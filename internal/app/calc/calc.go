package calc

import "poctracker/internal/app/ds"

// Константы лицензирования: сколько VM/воркеров "помещается" в один сокет
const (
	VMsPerSocket     = 15
	WorkersPerSocket = 10
)

// Чистые функции расчета сокетов. Никакого I/O, вся бизнес-валидация
// (например "пустая инфраструктура") живет на уровне хендлера.

// OnPremSockets считает on-prem сокеты: hosts * socketsPerHost по всем
// ворклоадам всех ЦОД. Отрицательные значения трактуются как ноль,
// чтобы одно кривое поле не уменьшало итог.
func OnPremSockets(datacenters []ds.Datacenter) int {
	total := 0
	for _, dc := range datacenters {
		for _, w := range dc.Workloads {
			total += clamp(w.Hosts) * clamp(w.SocketsPerHost)
		}
	}
	return total
}

// PublicCloudSockets считает сокеты для публичных облаков:
// ceil(totalVMs / VMsPerSocket), 0 если VM нет вообще.
func PublicCloudSockets(entries []ds.PublicCloudEntry) int {
	totalVMs := 0
	for _, e := range entries {
		totalVMs += clamp(e.VMs)
	}
	if totalVMs == 0 {
		return 0
	}
	return ceilDiv(totalVMs, VMsPerSocket)
}

// KubernetesSockets считает сокеты для k8s кластеров:
// ceil(totalWorkers / WorkersPerSocket), 0 если воркеров нет.
func KubernetesSockets(clusters []ds.KubernetesCluster) int {
	totalWorkers := 0
	for _, c := range clusters {
		totalWorkers += clamp(c.Workers)
	}
	if totalWorkers == 0 {
		return 0
	}
	return ceilDiv(totalWorkers, WorkersPerSocket)
}

// TotalSockets - сумма трех компонент
func TotalSockets(datacenters []ds.Datacenter, cloud []ds.PublicCloudEntry, clusters []ds.KubernetesCluster) int {
	return OnPremSockets(datacenters) + PublicCloudSockets(cloud) + KubernetesSockets(clusters)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// Округление вверх: неполный сокет все равно требует полной лицензии
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
